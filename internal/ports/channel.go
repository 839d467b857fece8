package ports

import (
	"context"

	"github.com/bnema/life-assistant/internal/domain"
)

type Channel interface {
	ReadRequest(ctx context.Context) (domain.Request, bool, error)
	WriteRequest(ctx context.Context, req domain.Request) error
	ReadResponse(ctx context.Context) (domain.Response, bool, error)
	WriteResponse(ctx context.Context, resp domain.Response) error
	AppendTaskBuffer(ctx context.Context, tasks ...domain.Task) error
	DrainTaskBuffer(ctx context.Context) ([]domain.Task, error)
}

// Notifier wakes a waiting loop when a channel file changes. A nil channel
// means callers fall back to polling.
type Notifier interface {
	Events() <-chan struct{}
}

type PollingNotifier struct{}

func (PollingNotifier) Events() <-chan struct{} {
	return nil
}
