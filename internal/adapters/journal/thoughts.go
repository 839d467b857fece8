package journal

import (
	"context"
	"fmt"

	"github.com/bnema/life-assistant/internal/config"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const thoughtBuffer = 256

// Thoughts queues internal thoughts and appends them to the thoughts log from
// a single goroutine started with Run. Log never blocks; when the queue is
// full the thought is dropped.
type Thoughts struct {
	path   string
	clock  ports.Clock
	logger *zap.Logger
	queue  chan domain.Thought
}

var _ ports.ThoughtLog = (*Thoughts)(nil)

func NewThoughts(cfg *viper.Viper, clock ports.Clock, logger *zap.Logger) (*Thoughts, error) {
	path, err := config.Path(cfg, config.KeyThoughtsLogPath)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Thoughts{
		path:   path,
		clock:  clock,
		logger: logger,
		queue:  make(chan domain.Thought, thoughtBuffer),
	}, nil
}

func (t *Thoughts) Log(kind domain.ThoughtType, content string) {
	thought := domain.Thought{Type: kind, Content: content, At: t.clock.Now().Format("15:04:05")}

	select {
	case t.queue <- thought:
	default:
		t.logger.Debug("thought queue full, dropping", zap.String("type", string(kind)))
	}
}

func (t *Thoughts) Run(ctx context.Context) error {
	for {
		select {
		case thought := <-t.queue:
			t.write(thought)
		case <-ctx.Done():
			for {
				select {
				case thought := <-t.queue:
					t.write(thought)
				default:
					return nil
				}
			}
		}
	}
}

func (t *Thoughts) Tail(n int) ([]string, error) {
	return tailLines(t.path, n)
}

func (t *Thoughts) write(thought domain.Thought) {
	line := fmt.Sprintf("[%s] %s: %s\n", thought.At, thought.Type, thought.Content)
	if err := appendLine(t.path, line); err != nil {
		t.logger.Warn("write thought", zap.Error(err))
	}
}
