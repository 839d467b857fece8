package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/life-assistant/internal/config"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
	"github.com/spf13/viper"
)

const plannerPreamble = `You plan actions for a personal life assistant backend.
Read the directives, then answer with your reasoning followed by a JSON array
of actions inside a ` + "```json```" + ` block. Each action is {"type": ..., "args": {...}}.

Actions:
- update_memory {"key": "personal_info.profile.full_name", "value": "Jane"}
- update_nested {"path": ["finance_and_banking", "budgets", "food"], "value": 300}
- append_to_list {"key": "social_and_relationships.contacts", "value": {"name": "Sam"}}
- remove_from_list {"key": "health_and_wellness.medications", "value": "aspirin"}
- retrieve_data {"section": "personal_info.profile"} or {"data_type": "tasks", "query": "rent"}
- create_task_sequence {"sequence_name": "...", "tasks": ["step one", "step two"], "description": "...", "priority": "high|medium|low"}
- add_task {"task": "..."} / complete_task {"task": "..."}
- add_constant_task {"description": "...", "interval": "every_cycle|hourly|daily|weekly", "priority": "medium"}
- queue_task {"description": "...", "priority": "medium"}
- remind {"task": "...", "time_str": "tomorrow 9am"}
- get_time {}

Use dot paths into the memory sections. Break requests that need several
steps into a task sequence instead of doing everything at once.`

type Reasoner struct {
	Client Client
	Model  string
}

var _ ports.Reasoner = Reasoner{}

func NewReasoner(cfg *viper.Viper) Reasoner {
	return Reasoner{Client: NewClient(cfg), Model: cfg.GetString(config.KeyBackendModel)}
}

func (r Reasoner) Reason(ctx context.Context, input domain.ReasoningInput) (domain.Plan, error) {
	output, err := r.Client.Generate(ctx, r.Model, BuildPlanPrompt(input))
	if err != nil {
		return domain.Plan{}, err
	}

	return ParsePlan(output)
}

func BuildPlanPrompt(input domain.ReasoningInput) string {
	var b strings.Builder
	b.WriteString(plannerPreamble)
	b.WriteString("\n\n")

	if step, ok := input.Directives[domain.DirectiveCurrentTask]; ok {
		fmt.Fprintf(&b, "CURRENT SEQUENCE STEP (work on exactly this step):\n%v\n\n", step)
	}

	b.WriteString("DIRECTIVES:\n")
	b.WriteString(indentJSON(input.Directives, "No directives provided"))
	b.WriteString("\n\nCURRENT TASKS:\n")
	if strings.TrimSpace(input.TaskList) == "" {
		b.WriteString("No tasks available")
	} else {
		b.WriteString(input.TaskList)
	}

	if sequences, ok := input.System[domain.KeyMultiCycleTasks]; ok {
		b.WriteString("\n\nTASK SEQUENCES:\n")
		b.WriteString(indentJSON(sequences, "{}"))
	}

	b.WriteString("\n\nYour response (thoughts followed by JSON actions array):")
	return b.String()
}

func indentJSON(v any, empty string) string {
	if v == nil {
		return empty
	}
	if doc, ok := v.(domain.Document); ok && len(doc) == 0 {
		return empty
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
