package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
	"go.uber.org/zap"
)

// ConstantTaskService keeps backend_memory.constant_tasks and feeds the due
// ones into the task buffer.
type ConstantTaskService struct {
	store    ports.MemoryStore
	channel  ports.Channel
	activity ports.ActivityLog
	clock    ports.Clock
	logger   *zap.Logger
}

func NewConstantTaskService(store ports.MemoryStore, channel ports.Channel, activity ports.ActivityLog, clock ports.Clock, logger *zap.Logger) *ConstantTaskService {
	if activity == nil {
		activity = ports.NopActivityLog{}
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ConstantTaskService{store: store, channel: channel, activity: activity, clock: clock, logger: logger}
}

// Add registers task unless one with the same description exists. added is
// false for duplicates.
func (s *ConstantTaskService) Add(ctx context.Context, task domain.ConstantTask) (domain.ConstantTask, bool, error) {
	task.Description = strings.TrimSpace(task.Description)
	if err := task.Validate(); err != nil {
		return domain.ConstantTask{}, false, err
	}
	if task.Interval == "" {
		task.Interval = domain.IntervalEveryCycle
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}

	added := false
	_, err := s.mutate(ctx, func(tasks []domain.ConstantTask, now time.Time) ([]domain.ConstantTask, error) {
		for _, existing := range tasks {
			if existing.Description == task.Description {
				task = existing
				return tasks, nil
			}
		}

		task.AddedAt = domain.FormatTimestamp(now)
		task.LastExecuted = nil
		added = true
		return append(tasks, task), nil
	})
	if err != nil {
		return domain.ConstantTask{}, false, fmt.Errorf("add constant task: %w", err)
	}

	return task, added, nil
}

func (s *ConstantTaskService) List(ctx context.Context) ([]domain.ConstantTask, error) {
	doc, err := s.store.Load(ctx, domain.DocumentBackend)
	if err != nil {
		return nil, fmt.Errorf("load backend memory: %w", err)
	}

	var tasks []domain.ConstantTask
	if err := doc.Decode(domain.KeyConstantTasks, &tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

// EnqueueDue stamps every due constant task and appends it to the task
// buffer as type "constant".
func (s *ConstantTaskService) EnqueueDue(ctx context.Context) ([]domain.ConstantTask, error) {
	var due []domain.ConstantTask
	_, err := s.mutate(ctx, func(tasks []domain.ConstantTask, now time.Time) ([]domain.ConstantTask, error) {
		due = due[:0]
		stamp := domain.FormatTimestamp(now)
		for i := range tasks {
			if !tasks[i].Due(now) {
				continue
			}
			tasks[i].LastExecuted = &stamp
			due = append(due, tasks[i])
		}
		return tasks, nil
	})
	if err != nil {
		return nil, fmt.Errorf("schedule constant tasks: %w", err)
	}
	if len(due) == 0 {
		return nil, nil
	}

	buffered := make([]domain.Task, 0, len(due))
	for _, task := range due {
		buffered = append(buffered, domain.Task{
			Description: task.Description,
			Priority:    task.Priority,
			Type:        "constant",
			AddedAt:     *task.LastExecuted,
			Status:      string(domain.TaskPending),
		})
		if err := s.activity.Record(ctx, "Executing constant task: "+task.Description); err != nil {
			s.logger.Warn("record constant task", zap.Error(err))
		}
	}
	if err := s.channel.AppendTaskBuffer(ctx, buffered...); err != nil {
		return nil, fmt.Errorf("buffer constant tasks: %w", err)
	}

	return due, nil
}

func (s *ConstantTaskService) RunScheduler(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			due, err := s.EnqueueDue(ctx)
			if err != nil {
				s.logger.Warn("constant task scheduler", zap.Error(err))
				continue
			}
			if len(due) > 0 {
				s.logger.Debug("queued constant tasks", zap.Int("count", len(due)))
			}
		}
	}
}

func (s *ConstantTaskService) mutate(ctx context.Context, fn func([]domain.ConstantTask, time.Time) ([]domain.ConstantTask, error)) (domain.Document, error) {
	return s.store.Mutate(ctx, domain.DocumentBackend, func(doc domain.Document) error {
		var tasks []domain.ConstantTask
		if err := doc.Decode(domain.KeyConstantTasks, &tasks); err != nil {
			return err
		}

		updated, err := fn(tasks, s.clock.Now())
		if err != nil {
			return err
		}
		if updated == nil {
			updated = []domain.ConstantTask{}
		}

		return doc.Put(domain.KeyConstantTasks, updated)
	})
}
