package ports

import (
	"context"

	"github.com/bnema/life-assistant/internal/domain"
)

type MemoryStore interface {
	Load(ctx context.Context, kind domain.DocumentKind) (domain.Document, error)
	Save(ctx context.Context, kind domain.DocumentKind, doc domain.Document) error
	Update(ctx context.Context, kind domain.DocumentKind, partial domain.Document) (domain.Document, error)
	Mutate(ctx context.Context, kind domain.DocumentKind, fn func(domain.Document) error) (domain.Document, error)
}
