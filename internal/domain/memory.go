package domain

import "time"

const (
	SystemVersion = "3.0.0"

	KeyMultiCycleTasks  = "multi_cycle_tasks"
	KeyInternalState    = "internal_state"
	KeySystem           = "system"
	KeyProcessingQueue  = "processing_queue"
	KeyExecutionHistory = "execution_history"
	KeyBackendState     = "backend_state"
	KeyConstantTasks    = "constant_tasks"
)

var UserSections = []string{
	"personal_info",
	"health_and_wellness",
	"calendar_and_events",
	"finance_and_banking",
	"social_and_relationships",
	"work_and_projects",
	"knowledge_and_learning",
	"devices_and_smart_home",
}

type InternalState struct {
	LastProcessedRequestID string `json:"last_processed_request_id"`
	LastRequestTime        string `json:"last_request_time,omitempty"`
}

type SystemCounters struct {
	StartedAt       string `json:"started_at,omitempty"`
	CyclesCompleted int    `json:"cycles_completed"`
	LastSystemCheck string `json:"last_system_check,omitempty"`
}

type BackendState struct {
	LastExecution  string `json:"last_execution,omitempty"`
	ExecutionCount int    `json:"execution_count"`
	ActiveTasks    []any  `json:"active_tasks"`
}

func DefaultDocument(kind DocumentKind, now time.Time) Document {
	switch kind {
	case DocumentSystem:
		return DefaultSystemMemory(now)
	case DocumentBackend:
		return DefaultBackendMemory(now)
	default:
		return DefaultUserMemory(now)
	}
}

func DefaultUserMemory(now time.Time) Document {
	doc := Document{}
	for _, section := range UserSections {
		doc[section] = map[string]any{}
	}

	doc["system_state"] = map[string]any{
		"last_interaction_timestamp": FormatTimestamp(now),
		"active_mode":                "assistant",
		"current_focus":              "general_assistance",
		"system_version":             SystemVersion,
	}
	doc["assistant_memory"] = map[string]any{
		"conversation_history": []any{},
		"learned_patterns":     map[string]any{},
		"user_feedback":        []any{},
	}

	return doc
}

func DefaultSystemMemory(now time.Time) Document {
	return Document{
		KeySystem: map[string]any{
			"started_at":       FormatTimestamp(now),
			"cycles_completed": float64(0),
		},
		KeyInternalState: map[string]any{
			"last_processed_request_id": "",
		},
		KeyMultiCycleTasks: map[string]any{
			"active_sequences":    map[string]any{},
			"completed_sequences": map[string]any{},
			"current_sequence_id": nil,
		},
	}
}

func DefaultBackendMemory(now time.Time) Document {
	return Document{
		KeyConstantTasks:    []any{},
		KeyProcessingQueue:  []any{},
		KeyExecutionHistory: []any{},
		KeyBackendState: map[string]any{
			"last_execution":  FormatTimestamp(now),
			"execution_count": float64(0),
			"active_tasks":    []any{},
		},
		"next_cycle_plan": []any{},
	}
}
