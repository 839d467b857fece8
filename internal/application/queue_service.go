package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
)

const DefaultQueueLease = 10 * time.Minute

// QueueService owns backend_memory.processing_queue. Every operation is one
// read-modify-write of the backend document.
type QueueService struct {
	store ports.MemoryStore
	clock ports.Clock
	lease time.Duration
	newID func() string
}

func NewQueueService(store ports.MemoryStore, clock ports.Clock, lease time.Duration) *QueueService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if lease <= 0 {
		lease = DefaultQueueLease
	}

	return &QueueService{store: store, clock: clock, lease: lease, newID: NewQueueItemID}
}

func (s *QueueService) Enqueue(ctx context.Context, task domain.Task) (domain.QueueItem, error) {
	if err := task.Validate(); err != nil {
		return domain.QueueItem{}, err
	}

	var item domain.QueueItem
	_, err := s.mutateQueue(ctx, func(doc domain.Document, queue *domain.ProcessingQueue, now time.Time) error {
		if task.AddedAt == "" {
			task.AddedAt = domain.FormatTimestamp(now)
		}
		item = domain.QueueItem{
			ID:      s.newID(),
			Task:    task,
			AddedAt: domain.FormatTimestamp(now),
			Status:  domain.TaskPending,
		}
		queue.Push(item)
		return nil
	})
	if err != nil {
		return domain.QueueItem{}, fmt.Errorf("enqueue task: %w", err)
	}

	return item, nil
}

// DequeueNext moves the oldest pending entry in flight. ok is false when
// nothing is pending.
func (s *QueueService) DequeueNext(ctx context.Context) (domain.QueueItem, bool, error) {
	var (
		item domain.QueueItem
		ok   bool
	)
	_, err := s.mutateQueue(ctx, func(doc domain.Document, queue *domain.ProcessingQueue, now time.Time) error {
		item, ok = queue.Start(now, s.lease)
		return nil
	})
	if err != nil {
		return domain.QueueItem{}, false, fmt.Errorf("dequeue task: %w", err)
	}

	return item, ok, nil
}

// MarkComplete finishes the entry at index, whatever its status.
func (s *QueueService) MarkComplete(ctx context.Context, index int, result any) (domain.QueueItem, error) {
	return s.complete(ctx, func(queue *domain.ProcessingQueue, now time.Time) (domain.QueueItem, error) {
		return queue.CompleteAt(index, now, result)
	})
}

func (s *QueueService) CompleteByID(ctx context.Context, id string, result any) (domain.QueueItem, error) {
	return s.complete(ctx, func(queue *domain.ProcessingQueue, now time.Time) (domain.QueueItem, error) {
		return queue.Complete(id, now, result)
	})
}

func (s *QueueService) RequeueExpired(ctx context.Context) ([]domain.QueueItem, error) {
	var requeued []domain.QueueItem
	_, err := s.mutateQueue(ctx, func(doc domain.Document, queue *domain.ProcessingQueue, now time.Time) error {
		requeued = queue.RequeueExpired(now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("requeue expired tasks: %w", err)
	}

	return requeued, nil
}

func (s *QueueService) List(ctx context.Context) ([]domain.QueueItem, error) {
	doc, err := s.store.Load(ctx, domain.DocumentBackend)
	if err != nil {
		return nil, fmt.Errorf("load backend memory: %w", err)
	}

	var items []domain.QueueItem
	if err := doc.Decode(domain.KeyProcessingQueue, &items); err != nil {
		return nil, err
	}

	return items, nil
}

func (s *QueueService) complete(ctx context.Context, finish func(*domain.ProcessingQueue, time.Time) (domain.QueueItem, error)) (domain.QueueItem, error) {
	var item domain.QueueItem
	_, err := s.mutateQueue(ctx, func(doc domain.Document, queue *domain.ProcessingQueue, now time.Time) error {
		var err error
		item, err = finish(queue, now)
		if err != nil {
			return err
		}

		entry, err := domain.ToDocument(item)
		if err != nil {
			return fmt.Errorf("encode history entry: %w", err)
		}
		if err := doc.AppendToList([]string{domain.KeyExecutionHistory}, map[string]any(entry)); err != nil {
			return err
		}

		var state domain.BackendState
		if err := doc.Decode(domain.KeyBackendState, &state); err != nil {
			return err
		}
		state.ExecutionCount++
		state.LastExecution = domain.FormatTimestamp(now)
		if state.ActiveTasks == nil {
			state.ActiveTasks = []any{}
		}
		patch, err := domain.ToDocument(state)
		if err != nil {
			return fmt.Errorf("encode backend state: %w", err)
		}
		doc.Merge(domain.Document{domain.KeyBackendState: map[string]any(patch)})

		return nil
	})
	if err != nil {
		return domain.QueueItem{}, fmt.Errorf("complete task: %w", err)
	}

	return item, nil
}

func (s *QueueService) mutateQueue(ctx context.Context, fn func(domain.Document, *domain.ProcessingQueue, time.Time) error) (domain.Document, error) {
	return s.store.Mutate(ctx, domain.DocumentBackend, func(doc domain.Document) error {
		var items []domain.QueueItem
		if err := doc.Decode(domain.KeyProcessingQueue, &items); err != nil {
			return err
		}

		queue := domain.NewProcessingQueue(items)
		queue.AssignMissingIDs(s.newID)

		if err := fn(doc, queue, s.clock.Now()); err != nil {
			return err
		}

		items = queue.Items()
		if items == nil {
			items = []domain.QueueItem{}
		}
		return doc.Put(domain.KeyProcessingQueue, items)
	})
}
