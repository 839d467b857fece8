package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

func ParsePriority(raw string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(raw))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

type Task struct {
	Description string   `json:"description"`
	Priority    Priority `json:"priority,omitempty"`
	Type        string   `json:"type,omitempty"`
	AddedAt     string   `json:"added_at,omitempty"`
	Status      string   `json:"status,omitempty"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return errors.New("task description is required")
	}

	return nil
}

type QueueItem struct {
	ID             string     `json:"id"`
	Task           Task       `json:"task"`
	AddedAt        string     `json:"added_at"`
	Status         TaskStatus `json:"status"`
	StartedAt      string     `json:"started_at,omitempty"`
	LeaseExpiresAt string     `json:"lease_expires_at,omitempty"`
	Attempts       int        `json:"attempts,omitempty"`
	CompletedAt    string     `json:"completed_at,omitempty"`
	Result         any        `json:"result,omitempty"`
}

// ProcessingQueue indexes the persisted queue list: pending entries form a
// FIFO and in-flight entries are addressable by id.
type ProcessingQueue struct {
	items    []QueueItem
	ready    []string
	inFlight map[string]int
	byID     map[string]int
}

func NewProcessingQueue(items []QueueItem) *ProcessingQueue {
	q := &ProcessingQueue{items: append([]QueueItem(nil), items...)}
	q.reindex()
	return q
}

func (q *ProcessingQueue) Items() []QueueItem {
	return append([]QueueItem(nil), q.items...)
}

func (q *ProcessingQueue) Len() int {
	return len(q.items)
}

func (q *ProcessingQueue) Ready() int {
	return len(q.ready)
}

func (q *ProcessingQueue) InFlight() int {
	return len(q.inFlight)
}

// AssignMissingIDs backfills ids on entries written before ids existed.
func (q *ProcessingQueue) AssignMissingIDs(newID func() string) bool {
	changed := false
	for i := range q.items {
		if q.items[i].ID == "" {
			q.items[i].ID = newID()
			changed = true
		}
	}
	if changed {
		q.reindex()
	}

	return changed
}

func (q *ProcessingQueue) Push(item QueueItem) {
	item.Status = TaskPending
	q.items = append(q.items, item)
	q.reindex()
}

func (q *ProcessingQueue) Start(now time.Time, lease time.Duration) (QueueItem, bool) {
	if len(q.ready) == 0 {
		return QueueItem{}, false
	}

	idx := q.byID[q.ready[0]]
	item := &q.items[idx]
	item.Status = TaskInProgress
	item.StartedAt = FormatTimestamp(now)
	if lease > 0 {
		item.LeaseExpiresAt = FormatTimestamp(now.Add(lease))
	}
	q.reindex()

	return *item, true
}

func (q *ProcessingQueue) Complete(id string, now time.Time, result any) (QueueItem, error) {
	idx, ok := q.inFlight[id]
	if !ok {
		if _, exists := q.byID[id]; exists {
			return QueueItem{}, fmt.Errorf("queue item %s is not in progress", id)
		}
		return QueueItem{}, ErrQueueItemNotFound
	}

	return q.completeAt(idx, now, result), nil
}

// CompleteAt finishes the entry at index regardless of its status.
func (q *ProcessingQueue) CompleteAt(index int, now time.Time, result any) (QueueItem, error) {
	if index < 0 || index >= len(q.items) {
		return QueueItem{}, fmt.Errorf("%w: index %d out of range (len %d)", ErrQueueItemNotFound, index, len(q.items))
	}

	return q.completeAt(index, now, result), nil
}

// RequeueExpired returns in-flight entries whose lease ended before now to the ready FIFO.
func (q *ProcessingQueue) RequeueExpired(now time.Time) []QueueItem {
	var requeued []QueueItem
	for i := range q.items {
		item := &q.items[i]
		if item.Status != TaskInProgress {
			continue
		}

		expires, ok := ParseTimestamp(item.LeaseExpiresAt)
		if ok && expires.After(now) {
			continue
		}

		item.Status = TaskPending
		item.Attempts++
		item.StartedAt = ""
		item.LeaseExpiresAt = ""
		requeued = append(requeued, *item)
	}

	if len(requeued) > 0 {
		q.reindex()
	}

	return requeued
}

func (q *ProcessingQueue) completeAt(index int, now time.Time, result any) QueueItem {
	item := q.items[index]
	item.Status = TaskCompleted
	item.CompletedAt = FormatTimestamp(now)
	item.LeaseExpiresAt = ""
	item.Result = result

	q.items = append(q.items[:index], q.items[index+1:]...)
	q.reindex()

	return item
}

func (q *ProcessingQueue) reindex() {
	q.ready = q.ready[:0]
	q.inFlight = make(map[string]int)
	q.byID = make(map[string]int, len(q.items))

	for i, item := range q.items {
		if item.ID != "" {
			q.byID[item.ID] = i
		}
		switch item.Status {
		case TaskPending, "":
			if item.ID != "" {
				q.ready = append(q.ready, item.ID)
			}
		case TaskInProgress:
			q.inFlight[item.ID] = i
		}
	}
}
