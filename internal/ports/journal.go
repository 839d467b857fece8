package ports

import (
	"context"

	"github.com/bnema/life-assistant/internal/domain"
)

type ChangeLog interface {
	Append(ctx context.Context, entry domain.ChangeEntry) error
	Tail(ctx context.Context, n int) ([]domain.ChangeEntry, error)
}

type ActivityLog interface {
	Record(ctx context.Context, line string) error
}

type ThoughtLog interface {
	Log(kind domain.ThoughtType, content string)
}

type NopThoughtLog struct{}

func (NopThoughtLog) Log(domain.ThoughtType, string) {}

type NopActivityLog struct{}

func (NopActivityLog) Record(context.Context, string) error { return nil }
