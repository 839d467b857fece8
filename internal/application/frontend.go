package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultMaxWait      = 60 * time.Second

	TimeoutMessage = "The backend is taking longer than expected. Your request is still being processed; try again in a moment."

	conversationLimit = 50
)

type FrontendDeps struct {
	Channel     ports.Channel
	Notifier    ports.Notifier
	Interpreter ports.Interpreter
	Memory      *MemoryService
	Clock       ports.Clock
	Logger      *zap.Logger
	NewID       func() string

	PollInterval time.Duration
	MaxWait      time.Duration
}

// Frontend sends one request at a time and waits for its response. A response
// is accepted once, and only for the request being waited on.
type Frontend struct {
	deps FrontendDeps

	mu             sync.Mutex
	lastResponseID string
}

func NewFrontend(deps FrontendDeps) *Frontend {
	if deps.Notifier == nil {
		deps.Notifier = ports.PollingNotifier{}
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.NewID == nil {
		deps.NewID = NewRequestID
	}
	if deps.PollInterval <= 0 {
		deps.PollInterval = DefaultPollInterval
	}
	if deps.MaxWait <= 0 {
		deps.MaxWait = DefaultMaxWait
	}

	return &Frontend{deps: deps}
}

func (f *Frontend) Send(ctx context.Context, typ domain.RequestType, content any) (domain.Request, error) {
	if typ == "" {
		typ = domain.RequestTypeCommand
	}

	req := domain.Request{
		ID:               f.deps.NewID(),
		Type:             typ,
		Content:          content,
		Timestamp:        domain.FormatTimestamp(f.deps.Clock.Now()),
		ResponseRequired: true,
	}
	if err := f.deps.Channel.WriteRequest(ctx, req); err != nil {
		return domain.Request{}, fmt.Errorf("send request: %w", err)
	}

	f.deps.Logger.Debug("request sent", zap.String("request_id", req.ID), zap.String("type", string(typ)))
	return req, nil
}

// Await blocks until the response for id shows up, MaxWait elapses or ctx is
// done. Responses for other ids are ignored.
func (f *Frontend) Await(ctx context.Context, id string) (domain.Response, error) {
	deadline := time.NewTimer(f.deps.MaxWait)
	defer deadline.Stop()
	ticker := time.NewTicker(f.deps.PollInterval)
	defer ticker.Stop()

	stale := ""
	for {
		resp, ok, err := f.deps.Channel.ReadResponse(ctx)
		if err != nil {
			return domain.Response{}, fmt.Errorf("read response: %w", err)
		}
		if ok {
			if accepted := f.accept(id, resp); accepted {
				return resp, nil
			}
			if resp.ID != id && resp.ID != stale {
				stale = resp.ID
				f.deps.Logger.Debug("ignoring response for another request",
					zap.String("request_id", id),
					zap.String("response_id", resp.ID),
				)
			}
		}

		select {
		case <-ctx.Done():
			return domain.Response{}, ctx.Err()
		case <-deadline.C:
			return domain.Response{}, fmt.Errorf("%w: %s", domain.ErrResponseTimeout, id)
		case <-f.deps.Notifier.Events():
		case <-ticker.C:
		}
	}
}

// Ask turns input into a directive, sends it as a command and waits for the
// reply. The exchange is appended to the conversation history.
func (f *Frontend) Ask(ctx context.Context, input string) (domain.Response, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.Response{}, errors.New("input is empty")
	}

	content := f.directive(ctx, input)
	f.remember(ctx, "user", input)

	resp, err := f.Roundtrip(ctx, domain.RequestTypeCommand, content)
	if err != nil {
		return domain.Response{}, err
	}

	f.remember(ctx, "assistant", resp.Text())
	return resp, nil
}

func (f *Frontend) Status(ctx context.Context) (domain.Response, error) {
	return f.Roundtrip(ctx, domain.RequestTypeStatus, "status")
}

func (f *Frontend) Pause(ctx context.Context) (domain.Response, error) {
	return f.Roundtrip(ctx, domain.RequestTypePause, "pause")
}

func (f *Frontend) Roundtrip(ctx context.Context, typ domain.RequestType, content any) (domain.Response, error) {
	req, err := f.Send(ctx, typ, content)
	if err != nil {
		return domain.Response{}, err
	}

	return f.Await(ctx, req.ID)
}

func (f *Frontend) accept(id string, resp domain.Response) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if resp.ID != id || resp.ID == f.lastResponseID {
		return false
	}
	f.lastResponseID = resp.ID
	return true
}

// directive asks the interpreter for a structured directive and falls back to
// the raw input.
func (f *Frontend) directive(ctx context.Context, input string) any {
	if f.deps.Interpreter == nil {
		return input
	}

	var memory domain.Document
	if f.deps.Memory != nil {
		doc, err := f.deps.Memory.Load(ctx, domain.DocumentUser)
		if err != nil {
			f.deps.Logger.Warn("load user memory", zap.Error(err))
		}
		memory = doc
	}

	directive, err := f.deps.Interpreter.Interpret(ctx, input, memory)
	if err != nil {
		f.deps.Logger.Warn("interpret input, sending raw text", zap.Error(err))
		return input
	}
	if len(directive) == 0 {
		return input
	}

	return map[string]any(directive)
}

func (f *Frontend) remember(ctx context.Context, role string, content string) {
	if f.deps.Memory == nil {
		return
	}

	now := domain.FormatTimestamp(f.deps.Clock.Now())
	_, err := f.deps.Memory.Mutate(ctx, domain.DocumentUser, func(doc domain.Document) error {
		path := []string{"assistant_memory", "conversation_history"}
		if err := doc.AppendToList(path, map[string]any{
			"role":      role,
			"content":   content,
			"timestamp": now,
		}); err != nil {
			return err
		}
		if history, ok := doc.Get(path); ok {
			if list, ok := history.([]any); ok && len(list) > conversationLimit {
				if err := doc.SetPath(path, list[len(list)-conversationLimit:]); err != nil {
					return err
				}
			}
		}

		return doc.SetPath([]string{"system_state", "last_interaction_timestamp"}, now)
	})
	if err != nil {
		f.deps.Logger.Warn("record conversation", zap.Error(err))
	}
}
