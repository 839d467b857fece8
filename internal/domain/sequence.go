package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const SequenceInProgressMessage = "Multi-cycle task sequence in progress. Next task will be processed automatically."

type SequenceStatus string

const (
	SequencePending    SequenceStatus = "pending"
	SequenceInProgress SequenceStatus = "in_progress"
	SequenceCompleted  SequenceStatus = "completed"
	SequenceFailed     SequenceStatus = "failed"
)

func (s SequenceStatus) Terminal() bool {
	return s == SequenceCompleted || s == SequenceFailed
}

// SequenceTask is one step descriptor. Steps written as objects keep their
// description, or their raw JSON when they have none.
type SequenceTask string

func (t *SequenceTask) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*t = SequenceTask(text)
		return nil
	}

	var object map[string]any
	if err := json.Unmarshal(data, &object); err == nil {
		for _, key := range []string{"description", "task", "name"} {
			if value, ok := object[key].(string); ok && value != "" {
				*t = SequenceTask(value)
				return nil
			}
		}
	}

	*t = SequenceTask(strings.TrimSpace(string(data)))
	return nil
}

func SequenceTasksFrom(values []any) []SequenceTask {
	tasks := make([]SequenceTask, 0, len(values))
	for _, value := range values {
		switch v := value.(type) {
		case string:
			tasks = append(tasks, SequenceTask(v))
		default:
			data, err := json.Marshal(v)
			if err != nil {
				tasks = append(tasks, SequenceTask(fmt.Sprint(v)))
				continue
			}
			var task SequenceTask
			_ = task.UnmarshalJSON(data)
			tasks = append(tasks, task)
		}
	}

	return tasks
}

type CompletedStep struct {
	Task        SequenceTask `json:"task"`
	CompletedAt string       `json:"completed_at"`
	Result      any          `json:"result"`
}

type Sequence struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Priority         Priority        `json:"priority"`
	Status           SequenceStatus  `json:"status"`
	Tasks            []SequenceTask  `json:"tasks"`
	CurrentTaskIndex int             `json:"current_task_index"`
	CompletedTasks   []CompletedStep `json:"completed_tasks"`
	Attempts         int             `json:"attempts,omitempty"`
	LastError        string          `json:"last_error,omitempty"`
	CreatedAt        string          `json:"created_at,omitempty"`
	UpdatedAt        string          `json:"updated_at,omitempty"`
	FinishedAt       string          `json:"finished_at,omitempty"`
}

func (s Sequence) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("sequence id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("sequence name is required")
	}
	if s.CurrentTaskIndex < 0 || s.CurrentTaskIndex > len(s.Tasks) {
		return fmt.Errorf("sequence %s index %d outside [0, %d]", s.ID, s.CurrentTaskIndex, len(s.Tasks))
	}

	return nil
}

func (s Sequence) Done() bool {
	return s.CurrentTaskIndex >= len(s.Tasks)
}

func (s Sequence) CurrentTask() (SequenceTask, bool) {
	if s.CurrentTaskIndex < 0 || s.Done() {
		return "", false
	}

	return s.Tasks[s.CurrentTaskIndex], true
}

func (s *Sequence) Advance(now time.Time, result any) (CompletedStep, error) {
	task, ok := s.CurrentTask()
	if !ok {
		return CompletedStep{}, fmt.Errorf("sequence %s has no remaining steps", s.ID)
	}

	step := CompletedStep{Task: task, CompletedAt: FormatTimestamp(now), Result: result}
	s.CompletedTasks = append(s.CompletedTasks, step)
	s.CurrentTaskIndex++
	s.Attempts = 0
	s.LastError = ""
	s.UpdatedAt = FormatTimestamp(now)

	return step, nil
}

type MultiCycleTasks struct {
	ActiveSequences    map[string]Sequence `json:"active_sequences"`
	CompletedSequences map[string]Sequence `json:"completed_sequences"`
	CurrentSequenceID  *string             `json:"current_sequence_id"`
}

func NewMultiCycleTasks() MultiCycleTasks {
	return MultiCycleTasks{
		ActiveSequences:    map[string]Sequence{},
		CompletedSequences: map[string]Sequence{},
	}
}

func (m *MultiCycleTasks) Normalize() {
	if m.ActiveSequences == nil {
		m.ActiveSequences = map[string]Sequence{}
	}
	if m.CompletedSequences == nil {
		m.CompletedSequences = map[string]Sequence{}
	}
	if m.CurrentSequenceID != nil && *m.CurrentSequenceID == "" {
		m.CurrentSequenceID = nil
	}
}

func (m MultiCycleTasks) CurrentID() string {
	if m.CurrentSequenceID == nil {
		return ""
	}
	return *m.CurrentSequenceID
}

func (m *MultiCycleTasks) SetCurrent(id string) {
	if id == "" {
		m.CurrentSequenceID = nil
		return
	}
	m.CurrentSequenceID = &id
}

func (m MultiCycleTasks) Current() (Sequence, bool) {
	id := m.CurrentID()
	if id == "" {
		return Sequence{}, false
	}

	seq, ok := m.ActiveSequences[id]
	return seq, ok
}

// Archive moves an active sequence to the completed set with the given
// terminal status and clears the current pointer if it referenced it.
func (m *MultiCycleTasks) Archive(id string, status SequenceStatus, now time.Time) (Sequence, error) {
	seq, ok := m.ActiveSequences[id]
	if !ok {
		return Sequence{}, ErrSequenceNotFound
	}
	if !status.Terminal() {
		return Sequence{}, fmt.Errorf("cannot archive sequence %s with status %s", id, status)
	}

	seq.Status = status
	seq.FinishedAt = FormatTimestamp(now)
	seq.UpdatedAt = seq.FinishedAt
	m.CompletedSequences[id] = seq
	delete(m.ActiveSequences, id)

	if m.CurrentID() == id {
		m.CurrentSequenceID = nil
	}

	return seq, nil
}

// NextCandidate picks the active sequence to promote when nothing is current:
// highest priority first, then lowest id. Ids are ULID based, so lowest is oldest.
func (m MultiCycleTasks) NextCandidate() (Sequence, bool) {
	if len(m.ActiveSequences) == 0 {
		return Sequence{}, false
	}

	candidates := make([]Sequence, 0, len(m.ActiveSequences))
	for _, seq := range m.ActiveSequences {
		candidates = append(candidates, seq)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Priority.Rank() != candidates[j].Priority.Rank() {
			return candidates[i].Priority.Rank() < candidates[j].Priority.Rank()
		}
		return candidates[i].ID < candidates[j].ID
	})

	return candidates[0], true
}
