package journal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/life-assistant/internal/config"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
	"github.com/spf13/viper"
)

const logFileMode = 0o600

type Activity struct {
	path  string
	clock ports.Clock
	mu    sync.Mutex
}

var _ ports.ActivityLog = (*Activity)(nil)

func NewActivity(cfg *viper.Viper, clock ports.Clock) (*Activity, error) {
	path, err := config.Path(cfg, config.KeyBackendLogPath)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Activity{path: path, clock: clock}, nil
}

func (a *Activity) Record(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	entry := fmt.Sprintf("[%s] %s\n", domain.FormatTimestamp(a.clock.Now()), strings.TrimRight(line, "\n"))
	return appendLine(a.path, entry)
}

func (a *Activity) Tail(n int) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return tailLines(a.path, n)
}

func appendLine(path string, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFileMode)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append log file: %w", err)
	}

	return f.Close()
}

// tailLines returns the last n non-empty lines of path; a missing file has none.
func tailLines(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(ring) == n {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	return ring, nil
}
