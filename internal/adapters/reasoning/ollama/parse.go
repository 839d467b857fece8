package ollama

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bnema/life-assistant/internal/domain"
)

var ErrMalformedPlan = errors.New("malformed model output")

var (
	thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fenceBlock = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\n(.*?)```")
	arrayBlock = regexp.MustCompile(`(?s)\[.*\]`)
	objectBody = regexp.MustCompile(`(?s)\{.*\}`)
)

const (
	summaryWithActions    = "Generated %d actions to fulfill your request."
	summaryWithoutActions = "I understood your request but couldn't determine specific actions to take."
)

// ParsePlan splits model output into free-form thoughts and the JSON action
// list. Output without a decodable action list is a plan without actions,
// except that a fenced JSON block which does not decode is ErrMalformedPlan.
func ParsePlan(raw string) (domain.Plan, error) {
	text := strings.TrimSpace(thinkBlock.ReplaceAllString(raw, ""))

	thoughts, payload, fenced, found := extractJSON(text, arrayBlock)
	if !found {
		return domain.Plan{Thoughts: text, Summary: summaryWithoutActions}, nil
	}

	actions, summary, err := decodeActions(payload)
	if err != nil {
		if !fenced {
			return domain.Plan{Thoughts: text, Summary: summaryWithoutActions}, nil
		}
		return domain.Plan{}, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}

	if summary == "" {
		if len(actions) > 0 {
			summary = fmt.Sprintf(summaryWithActions, len(actions))
		} else {
			summary = summaryWithoutActions
		}
	}

	return domain.Plan{Thoughts: thoughts, Actions: actions, Summary: summary}, nil
}

// ParseDirective pulls the directive object out of model output. ok is false
// when no object could be decoded.
func ParseDirective(raw string) (domain.Document, string, bool) {
	text := strings.TrimSpace(thinkBlock.ReplaceAllString(raw, ""))

	thoughts, payload, _, found := extractJSON(text, objectBody)
	if !found {
		return nil, text, false
	}

	var directive domain.Document
	if err := json.Unmarshal([]byte(payload), &directive); err != nil || directive == nil {
		return nil, text, false
	}

	return directive, thoughts, true
}

func extractJSON(text string, fallback *regexp.Regexp) (thoughts string, payload string, fenced bool, found bool) {
	if loc := fenceBlock.FindStringSubmatchIndex(text); loc != nil {
		return strings.TrimSpace(text[:loc[0]]), strings.TrimSpace(text[loc[2]:loc[3]]), true, true
	}

	if loc := fallback.FindStringIndex(text); loc != nil {
		return strings.TrimSpace(text[:loc[0]] + text[loc[1]:]), text[loc[0]:loc[1]], false, true
	}

	return text, "", false, false
}

func decodeActions(payload string) ([]domain.Action, string, error) {
	trimmed := strings.TrimSpace(payload)

	if strings.HasPrefix(trimmed, "{") {
		var wrapped struct {
			Actions []domain.Action `json:"actions"`
			Summary string          `json:"summary"`
			Type    string          `json:"type"`
			Args    map[string]any  `json:"args"`
		}
		if err := json.Unmarshal([]byte(trimmed), &wrapped); err != nil {
			return nil, "", err
		}
		if wrapped.Type != "" {
			return []domain.Action{{Type: wrapped.Type, Args: wrapped.Args}}, wrapped.Summary, nil
		}
		return keepValid(wrapped.Actions), wrapped.Summary, nil
	}

	var actions []domain.Action
	if err := json.Unmarshal([]byte(trimmed), &actions); err != nil {
		return nil, "", err
	}

	return keepValid(actions), "", nil
}

func keepValid(actions []domain.Action) []domain.Action {
	kept := make([]domain.Action, 0, len(actions))
	for _, action := range actions {
		if action.Validate() != nil {
			continue
		}
		if action.Args == nil {
			action.Args = map[string]any{}
		}
		kept = append(kept, action)
	}

	return kept
}
