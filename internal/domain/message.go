package domain

import (
	"errors"
	"fmt"
	"strings"
)

type RequestType string

const (
	RequestTypeCommand RequestType = "command"
	RequestTypeStatus  RequestType = "status"
	RequestTypePause   RequestType = "pause"
)

type ResponseStatus string

const (
	ResponseSuccess ResponseStatus = "success"
	ResponseError   ResponseStatus = "error"
)

const (
	MultiCycleStatusActive = "active"

	// DirectiveCurrentTask is the directive key naming the sequence step to work on.
	DirectiveCurrentTask = "current_multi_cycle_task"
	DirectiveUserInput   = "user_input"
	DirectiveAction      = "action"
)

type Request struct {
	ID               string      `json:"id"`
	Type             RequestType `json:"type"`
	Content          any         `json:"content"`
	Timestamp        string      `json:"timestamp"`
	ResponseRequired bool        `json:"response_required"`
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("request id is required")
	}

	return nil
}

// Directives returns the request content as a fresh directive object. Plain
// text becomes {"user_input": text}.
func (r Request) Directives() Document {
	switch content := r.Content.(type) {
	case nil:
		return Document{}
	case string:
		return Document{DirectiveUserInput: content}
	default:
		if m, ok := asMap(content); ok {
			return cloneMap(m)
		}
		if doc, err := ToDocument(content); err == nil {
			return doc
		}
		return Document{DirectiveUserInput: fmt.Sprint(content)}
	}
}

type Response struct {
	ID               string         `json:"id"`
	Status           ResponseStatus `json:"status"`
	Content          any            `json:"content"`
	Actions          []ActionRecord `json:"actions,omitempty"`
	Timestamp        string         `json:"timestamp"`
	MultiCycleStatus string         `json:"multi_cycle_status,omitempty"`
}

func (r Response) Failed() bool {
	return r.Status == ResponseError
}

func (r Response) Text() string {
	switch content := r.Content.(type) {
	case nil:
		return ""
	case string:
		return content
	default:
		return fmt.Sprint(content)
	}
}
