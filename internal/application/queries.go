package application

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
)

type Status struct {
	StartedAt              string                `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CyclesCompleted        int                   `json:"cycles_completed" yaml:"cycles_completed"`
	LastSystemCheck        string                `json:"last_system_check,omitempty" yaml:"last_system_check,omitempty"`
	LastProcessedRequestID string                `json:"last_processed_request_id,omitempty" yaml:"last_processed_request_id,omitempty"`
	LastRequestTime        string                `json:"last_request_time,omitempty" yaml:"last_request_time,omitempty"`
	CurrentSequenceID      string                `json:"current_sequence_id,omitempty" yaml:"current_sequence_id,omitempty"`
	ActiveSequences        []domain.Sequence     `json:"active_sequences" yaml:"active_sequences"`
	CompletedSequences     []domain.Sequence     `json:"completed_sequences" yaml:"completed_sequences"`
	Queue                  []domain.QueueItem    `json:"processing_queue" yaml:"processing_queue"`
	ConstantTasks          []domain.ConstantTask `json:"constant_tasks" yaml:"constant_tasks"`
	ExecutionCount         int                   `json:"execution_count" yaml:"execution_count"`
	LastExecution          string                `json:"last_execution,omitempty" yaml:"last_execution,omitempty"`
}

func (s Status) CurrentSequence() (domain.Sequence, bool) {
	for _, seq := range s.ActiveSequences {
		if seq.ID == s.CurrentSequenceID {
			return seq, true
		}
	}

	return domain.Sequence{}, false
}

func (s Status) PendingTasks() int {
	pending := 0
	for _, item := range s.Queue {
		if item.Status == domain.TaskPending {
			pending++
		}
	}
	return pending
}

func (s Status) Summary() string {
	var b strings.Builder
	if seq, ok := s.CurrentSequence(); ok {
		fmt.Fprintf(&b, "Current sequence: %s.", Progress(seq))
	} else {
		b.WriteString("No active task sequence.")
	}
	fmt.Fprintf(&b, " %d active and %d finished sequences.", len(s.ActiveSequences), len(s.CompletedSequences))
	fmt.Fprintf(&b, " Queue: %d pending of %d.", s.PendingTasks(), len(s.Queue))
	fmt.Fprintf(&b, " Cycles completed: %d.", s.CyclesCompleted)

	return b.String()
}

type StatusQuery struct {
	store ports.MemoryStore
}

func NewStatusQuery(store ports.MemoryStore) *StatusQuery {
	return &StatusQuery{store: store}
}

func (q *StatusQuery) Snapshot(ctx context.Context) (Status, error) {
	system, err := q.store.Load(ctx, domain.DocumentSystem)
	if err != nil {
		return Status{}, fmt.Errorf("load system memory: %w", err)
	}
	backend, err := q.store.Load(ctx, domain.DocumentBackend)
	if err != nil {
		return Status{}, fmt.Errorf("load backend memory: %w", err)
	}

	var (
		counters domain.SystemCounters
		internal domain.InternalState
		state    domain.BackendState
		status   Status
	)
	if err := system.Decode(domain.KeySystem, &counters); err != nil {
		return Status{}, err
	}
	if err := system.Decode(domain.KeyInternalState, &internal); err != nil {
		return Status{}, err
	}
	tasks, err := decodeMultiCycleTasks(system)
	if err != nil {
		return Status{}, err
	}
	if err := backend.Decode(domain.KeyBackendState, &state); err != nil {
		return Status{}, err
	}
	if err := backend.Decode(domain.KeyProcessingQueue, &status.Queue); err != nil {
		return Status{}, err
	}
	if err := backend.Decode(domain.KeyConstantTasks, &status.ConstantTasks); err != nil {
		return Status{}, err
	}

	status.StartedAt = counters.StartedAt
	status.CyclesCompleted = counters.CyclesCompleted
	status.LastSystemCheck = counters.LastSystemCheck
	status.LastProcessedRequestID = internal.LastProcessedRequestID
	status.LastRequestTime = internal.LastRequestTime
	status.CurrentSequenceID = tasks.CurrentID()
	status.ActiveSequences = sortedSequences(tasks.ActiveSequences)
	status.CompletedSequences = sortedSequences(tasks.CompletedSequences)
	status.ExecutionCount = state.ExecutionCount
	status.LastExecution = state.LastExecution

	return status, nil
}

func sortedSequences(m map[string]domain.Sequence) []domain.Sequence {
	out := make([]domain.Sequence, 0, len(m))
	for _, seq := range m {
		out = append(out, seq)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}
