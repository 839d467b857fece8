package ollama

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/life-assistant/internal/config"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
	"github.com/spf13/viper"
)

const (
	maxHistory    = 10
	promptHistory = 5
)

const interpreterPreamble = `You are the conversational front of a personal life assistant.
Turn the user's message into one JSON object of directives for the backend.
Keep the user's words under "user_input" and add only the fields that help,
for example {"intent": "remember", "section": "personal_info.profile", "details": {...}}.
To start a multi-step job, emit {"action": "create_task_sequence", "sequence_name": "...", "tasks": [...]}.`

type turn struct {
	role    string
	content string
}

// Interpreter turns user text into a backend directive with the frontend model.
// It keeps a short rolling conversation for context.
type Interpreter struct {
	Client Client
	Model  string

	mu      sync.Mutex
	history []turn
}

var _ ports.Interpreter = (*Interpreter)(nil)

func NewInterpreter(cfg *viper.Viper) *Interpreter {
	return &Interpreter{Client: NewClient(cfg), Model: cfg.GetString(config.KeyFrontendModel)}
}

// Interpret returns the model's directive object, or {"user_input": input}
// when the output carries no usable JSON.
func (i *Interpreter) Interpret(ctx context.Context, input string, memory domain.Document) (domain.Document, error) {
	prompt := i.buildPrompt(input, memory)
	i.remember("user", input)

	output, err := i.Client.Generate(ctx, i.Model, prompt)
	if err != nil {
		return nil, err
	}

	directive, thoughts, ok := ParseDirective(output)
	if !ok {
		directive = domain.Document{}
	}
	if _, has := directive[domain.DirectiveUserInput]; !has {
		directive[domain.DirectiveUserInput] = input
	}

	if thoughts != "" {
		i.remember("assistant", thoughts)
	}

	return directive, nil
}

func (i *Interpreter) buildPrompt(input string, memory domain.Document) string {
	var b strings.Builder
	b.WriteString(interpreterPreamble)

	i.mu.Lock()
	recent := i.history
	if len(recent) > promptHistory {
		recent = recent[len(recent)-promptHistory:]
	}
	if len(recent) > 0 {
		b.WriteString("\n\nCONVERSATION:\n")
		for _, t := range recent {
			label := "User"
			if t.role == "assistant" {
				label = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", label, t.content)
		}
	}
	i.mu.Unlock()

	if profile, ok := memory.Get([]string{"personal_info"}); ok {
		b.WriteString("\nKNOWN ABOUT THE USER:\n")
		b.WriteString(indentJSON(profile, "{}"))
	}

	fmt.Fprintf(&b, "\n\nUSER: %s\nDirective JSON:", input)
	return b.String()
}

func (i *Interpreter) remember(role string, content string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.history = append(i.history, turn{role: role, content: content})
	if len(i.history) > maxHistory {
		i.history = i.history[len(i.history)-maxHistory:]
	}
}
