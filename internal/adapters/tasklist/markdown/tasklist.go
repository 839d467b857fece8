package markdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/life-assistant/internal/config"
	"github.com/bnema/life-assistant/internal/ports"
	"github.com/spf13/viper"
)

const (
	header        = "# Tasks"
	openPrefix    = "- [ ] "
	donePrefix    = "- [x] "
	tasksFileMode = 0o600
)

type TaskList struct {
	path string
	mu   sync.Mutex
}

var _ ports.TaskList = (*TaskList)(nil)

func NewTaskList(cfg *viper.Viper) (*TaskList, error) {
	path, err := config.Path(cfg, config.KeyTasksPath)
	if err != nil {
		return nil, err
	}

	return &TaskList{path: path}, nil
}

func (l *TaskList) Path() string {
	return l.path
}

func (l *TaskList) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.read()
}

// Add appends an open item. It reports false when the task is already listed,
// open or done.
func (l *TaskList) Add(ctx context.Context, task string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	task = strings.TrimSpace(task)
	if task == "" {
		return false, errors.New("task is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	content, err := l.read()
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(content) == "" || !strings.Contains(content, header) {
		content = header + "\n\n"
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == openPrefix+task || line == donePrefix+task {
			return false, nil
		}
	}

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += openPrefix + task + "\n"

	return true, l.write(content)
}

func (l *TaskList) Complete(ctx context.Context, task string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	task = strings.TrimSpace(task)

	l.mu.Lock()
	defer l.mu.Unlock()

	content, err := l.read()
	if err != nil {
		return false, err
	}

	lines := strings.Split(content, "\n")
	found := false
	for i, line := range lines {
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if strings.TrimSpace(line) == openPrefix+task {
			lines[i] = indent + donePrefix + task
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}

	return true, l.write(strings.Join(lines, "\n"))
}

func (l *TaskList) read() (string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read tasks file: %w", err)
	}

	return string(data), nil
}

func (l *TaskList) write(content string) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("create tasks directory: %w", err)
	}
	if err := os.WriteFile(l.path, []byte(content), tasksFileMode); err != nil {
		return fmt.Errorf("write tasks file: %w", err)
	}

	return nil
}
