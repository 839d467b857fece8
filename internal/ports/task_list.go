package ports

import "context"

type TaskList interface {
	Read(ctx context.Context) (string, error)
	Add(ctx context.Context, task string) (bool, error)
	Complete(ctx context.Context, task string) (bool, error)
}
