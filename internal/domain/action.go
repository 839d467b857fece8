package domain

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ActionUpdateMemory       = "update_memory"
	ActionUpdateNested       = "update_nested"
	ActionAppendToList       = "append_to_list"
	ActionRemoveFromList     = "remove_from_list"
	ActionRetrieveData       = "retrieve_data"
	ActionCreateTaskSequence = "create_task_sequence"
	ActionAddTask            = "add_task"
	ActionCompleteTask       = "complete_task"
	ActionAddConstantTask    = "add_constant_task"
	ActionQueueTask          = "queue_task"
	ActionRemind             = "remind"
	ActionGetTime            = "get_time"
)

var knownActions = map[string]struct{}{
	ActionUpdateMemory:       {},
	ActionUpdateNested:       {},
	ActionAppendToList:       {},
	ActionRemoveFromList:     {},
	ActionRetrieveData:       {},
	ActionCreateTaskSequence: {},
	ActionAddTask:            {},
	ActionCompleteTask:       {},
	ActionAddConstantTask:    {},
	ActionQueueTask:          {},
	ActionRemind:             {},
	ActionGetTime:            {},
}

func IsKnownAction(actionType string) bool {
	_, ok := knownActions[actionType]
	return ok
}

type Action struct {
	Type string         `json:"type"`
	Args map[string]any `json:"args"`
}

func (a Action) Validate() error {
	if strings.TrimSpace(a.Type) == "" {
		return errors.New("action type is required")
	}

	return nil
}

// ActionFromDirective lifts {"action": "<type>", ...args} into an Action.
func ActionFromDirective(directives Document) (Action, bool) {
	actionType, ok := directives[DirectiveAction].(string)
	if !ok || !IsKnownAction(actionType) {
		return Action{}, false
	}

	args := make(map[string]any, len(directives))
	for key, value := range directives {
		if key == DirectiveAction || key == DirectiveCurrentTask {
			continue
		}
		args[key] = cloneValue(value)
	}

	return Action{Type: actionType, Args: args}, true
}

type ActionRecord struct {
	Type    string         `json:"type"`
	Args    map[string]any `json:"args"`
	Result  any            `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
	Success bool           `json:"success"`
}

func FailedActions(records []ActionRecord) int {
	failed := 0
	for _, record := range records {
		if !record.Success {
			failed++
		}
	}
	return failed
}

type Plan struct {
	Thoughts string   `json:"thoughts"`
	Actions  []Action `json:"actions"`
	Summary  string   `json:"summary"`
}

type ReasoningInput struct {
	Directives Document
	TaskList   string
	System     Document
}

type ChangeEntry struct {
	ID         int64
	RecordedAt string
	ActionType string
	Action     string
	Result     string
	Success    bool
}

func (e ChangeEntry) String() string {
	return fmt.Sprintf("[%s] Action: %s, Result: %s", e.RecordedAt, e.Action, e.Result)
}
