package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
	"go.uber.org/zap"
)

const DefaultSequenceMaxAttempts = 3

const (
	SequenceOutcomeStarted   = "started"
	SequenceOutcomeAdvanced  = "advanced"
	SequenceOutcomeCompleted = "completed"
	SequenceOutcomeRetried   = "retried"
	SequenceOutcomeFailed    = "failed"
)

type CreateSequenceInput struct {
	Name        string
	Description string
	Priority    domain.Priority
	Tasks       []domain.SequenceTask
}

// SequenceCheck is what the engine found before a request is processed.
// Task is set only when Active.
type SequenceCheck struct {
	Active   bool
	Sequence domain.Sequence
	Task     domain.SequenceTask
	Archived []domain.Sequence
}

// SequenceEngine drives multi-cycle sequences stored in system memory. Check
// selects the step for this cycle; only Advance moves the index, and only
// after the step ran.
type SequenceEngine struct {
	store       ports.MemoryStore
	clock       ports.Clock
	newID       func() string
	maxAttempts int
	logger      *zap.Logger
	thoughts    ports.ThoughtLog
	metrics     ports.Metrics
}

type SequenceOption func(*SequenceEngine)

func WithSequenceClock(clock ports.Clock) SequenceOption {
	return func(e *SequenceEngine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

func WithSequenceIDs(newID func() string) SequenceOption {
	return func(e *SequenceEngine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

func WithMaxAttempts(n int) SequenceOption {
	return func(e *SequenceEngine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

func WithSequenceLogger(logger *zap.Logger) SequenceOption {
	return func(e *SequenceEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithSequenceThoughts(thoughts ports.ThoughtLog) SequenceOption {
	return func(e *SequenceEngine) {
		if thoughts != nil {
			e.thoughts = thoughts
		}
	}
}

func WithSequenceMetrics(metrics ports.Metrics) SequenceOption {
	return func(e *SequenceEngine) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

func NewSequenceEngine(store ports.MemoryStore, opts ...SequenceOption) *SequenceEngine {
	engine := &SequenceEngine{
		store:       store,
		clock:       ports.SystemClock{},
		newID:       NewSequenceID,
		maxAttempts: DefaultSequenceMaxAttempts,
		logger:      zap.NewNop(),
		thoughts:    ports.NopThoughtLog{},
		metrics:     ports.NopMetrics{},
	}
	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// Create registers a new sequence at index 0. It becomes current only when no
// other sequence is.
func (e *SequenceEngine) Create(ctx context.Context, in CreateSequenceInput) (domain.Sequence, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Sequence{}, errors.New("sequence name is required")
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	var created domain.Sequence
	err := e.mutate(ctx, func(tasks *domain.MultiCycleTasks, now time.Time) error {
		stamp := domain.FormatTimestamp(now)
		created = domain.Sequence{
			ID:             e.newID(),
			Name:           name,
			Description:    in.Description,
			Priority:       priority,
			Status:         domain.SequencePending,
			Tasks:          append([]domain.SequenceTask{}, in.Tasks...),
			CompletedTasks: []domain.CompletedStep{},
			CreatedAt:      stamp,
			UpdatedAt:      stamp,
		}
		if err := created.Validate(); err != nil {
			return err
		}

		if tasks.CurrentID() == "" {
			tasks.SetCurrent(created.ID)
		}
		tasks.ActiveSequences[created.ID] = created
		return nil
	})
	if err != nil {
		return domain.Sequence{}, fmt.Errorf("create sequence: %w", err)
	}

	e.thoughts.Log(domain.ThoughtTask, fmt.Sprintf("Created task sequence '%s' with %d steps", created.Name, len(created.Tasks)))
	return created, nil
}

// Check resolves the current sequence for this cycle. With no current
// sequence, the best active candidate is promoted first. A finished current
// sequence is archived as completed and a dangling pointer is cleared; in both
// cases the result is inactive so the request is processed normally.
func (e *SequenceEngine) Check(ctx context.Context) (SequenceCheck, error) {
	var check SequenceCheck
	err := e.mutate(ctx, func(tasks *domain.MultiCycleTasks, now time.Time) error {
		check = SequenceCheck{}

		id := tasks.CurrentID()
		if id == "" {
			candidate, ok := tasks.NextCandidate()
			if !ok {
				return nil
			}
			id = candidate.ID
			tasks.SetCurrent(id)
		}

		seq, ok := tasks.ActiveSequences[id]
		if !ok {
			e.logger.Warn("current sequence not found in active sequences, clearing pointer", zap.String("sequence_id", id))
			tasks.SetCurrent("")
			return nil
		}

		if seq.Done() {
			archived, err := tasks.Archive(id, domain.SequenceCompleted, now)
			if err != nil {
				return err
			}
			check.Archived = append(check.Archived, archived)
			return nil
		}

		task, _ := seq.CurrentTask()
		if seq.Status != domain.SequenceInProgress {
			seq.Status = domain.SequenceInProgress
			seq.UpdatedAt = domain.FormatTimestamp(now)
			tasks.ActiveSequences[id] = seq
		}

		check.Active = true
		check.Sequence = seq
		check.Task = task
		return nil
	})
	if err != nil {
		return SequenceCheck{}, fmt.Errorf("check sequences: %w", err)
	}

	for _, archived := range check.Archived {
		e.thoughts.Log(domain.ThoughtTask, fmt.Sprintf("Multi-cycle task sequence '%s' completed!", archived.Name))
		e.metrics.SequenceStep(SequenceOutcomeCompleted)
	}
	if check.Active {
		e.thoughts.Log(domain.ThoughtTask, fmt.Sprintf("Processing multi-cycle task: %s", check.Task))
		e.thoughts.Log(domain.ThoughtTask, fmt.Sprintf("Sequence: %s", Progress(check.Sequence)))
		if check.Sequence.CurrentTaskIndex == 0 && check.Sequence.Attempts == 0 {
			e.metrics.SequenceStep(SequenceOutcomeStarted)
		}
	}

	return check, nil
}

// Advance records the current step of id as done with result and archives the
// sequence once every step ran. completed reports that transition.
func (e *SequenceEngine) Advance(ctx context.Context, id string, result any) (domain.Sequence, bool, error) {
	var (
		seq       domain.Sequence
		completed bool
	)
	err := e.mutate(ctx, func(tasks *domain.MultiCycleTasks, now time.Time) error {
		current, ok := tasks.ActiveSequences[id]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrSequenceNotFound, id)
		}

		if _, err := current.Advance(now, result); err != nil {
			return err
		}

		completed = current.Done()
		if !completed {
			tasks.ActiveSequences[id] = current
			seq = current
			return nil
		}

		tasks.ActiveSequences[id] = current
		archived, err := tasks.Archive(id, domain.SequenceCompleted, now)
		if err != nil {
			return err
		}
		seq = archived
		return nil
	})
	if err != nil {
		return domain.Sequence{}, false, fmt.Errorf("advance sequence: %w", err)
	}

	if completed {
		e.thoughts.Log(domain.ThoughtTask, fmt.Sprintf("Multi-cycle task sequence '%s' completed!", seq.Name))
		e.metrics.SequenceStep(SequenceOutcomeCompleted)
	} else {
		next, _ := seq.CurrentTask()
		e.thoughts.Log(domain.ThoughtTask, fmt.Sprintf("Moving to next task in sequence: %s", next))
		e.metrics.SequenceStep(SequenceOutcomeAdvanced)
	}

	return seq, completed, nil
}

// RecordFailure counts a failed attempt at the current step of id. When the
// attempts reach the limit the sequence is archived as failed.
func (e *SequenceEngine) RecordFailure(ctx context.Context, id string, cause error) (domain.Sequence, bool, error) {
	var (
		seq    domain.Sequence
		failed bool
	)
	err := e.mutate(ctx, func(tasks *domain.MultiCycleTasks, now time.Time) error {
		current, ok := tasks.ActiveSequences[id]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrSequenceNotFound, id)
		}

		current.Attempts++
		if cause != nil {
			current.LastError = cause.Error()
		}
		current.UpdatedAt = domain.FormatTimestamp(now)
		tasks.ActiveSequences[id] = current

		failed = current.Attempts >= e.maxAttempts
		if !failed {
			seq = current
			return nil
		}

		archived, err := tasks.Archive(id, domain.SequenceFailed, now)
		if err != nil {
			return err
		}
		seq = archived
		return nil
	})
	if err != nil {
		return domain.Sequence{}, false, fmt.Errorf("record sequence failure: %w", err)
	}

	if failed {
		e.thoughts.Log(domain.ThoughtError, fmt.Sprintf("Multi-cycle task sequence '%s' failed after %d attempts: %s", seq.Name, seq.Attempts, seq.LastError))
		e.metrics.SequenceStep(SequenceOutcomeFailed)
	} else {
		e.metrics.SequenceStep(SequenceOutcomeRetried)
	}

	return seq, failed, nil
}

func (e *SequenceEngine) Fail(ctx context.Context, id string, reason string) (domain.Sequence, error) {
	var seq domain.Sequence
	err := e.mutate(ctx, func(tasks *domain.MultiCycleTasks, now time.Time) error {
		current, ok := tasks.ActiveSequences[id]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrSequenceNotFound, id)
		}
		if reason != "" {
			current.LastError = reason
			tasks.ActiveSequences[id] = current
		}

		var err error
		seq, err = tasks.Archive(id, domain.SequenceFailed, now)
		return err
	})
	if err != nil {
		return domain.Sequence{}, fmt.Errorf("fail sequence: %w", err)
	}

	e.thoughts.Log(domain.ThoughtError, fmt.Sprintf("Multi-cycle task sequence '%s' marked failed", seq.Name))
	e.metrics.SequenceStep(SequenceOutcomeFailed)
	return seq, nil
}

func (e *SequenceEngine) Snapshot(ctx context.Context) (domain.MultiCycleTasks, error) {
	doc, err := e.store.Load(ctx, domain.DocumentSystem)
	if err != nil {
		return domain.MultiCycleTasks{}, fmt.Errorf("load system memory: %w", err)
	}

	return decodeMultiCycleTasks(doc)
}

func Progress(seq domain.Sequence) string {
	total := len(seq.Tasks)
	task, ok := seq.CurrentTask()
	if !ok {
		return fmt.Sprintf("%s: %d of %d steps done", seq.Name, len(seq.CompletedTasks), total)
	}

	return fmt.Sprintf("%s: step %d of %d (%s)", seq.Name, seq.CurrentTaskIndex+1, total, task)
}

func (e *SequenceEngine) mutate(ctx context.Context, fn func(*domain.MultiCycleTasks, time.Time) error) error {
	_, err := e.store.Mutate(ctx, domain.DocumentSystem, func(doc domain.Document) error {
		tasks, err := decodeMultiCycleTasks(doc)
		if err != nil {
			return err
		}

		if err := fn(&tasks, e.clock.Now()); err != nil {
			return err
		}

		return doc.Put(domain.KeyMultiCycleTasks, tasks)
	})

	return err
}

func decodeMultiCycleTasks(doc domain.Document) (domain.MultiCycleTasks, error) {
	tasks := domain.NewMultiCycleTasks()
	if err := doc.Decode(domain.KeyMultiCycleTasks, &tasks); err != nil {
		return domain.MultiCycleTasks{}, err
	}
	tasks.Normalize()

	return tasks, nil
}
