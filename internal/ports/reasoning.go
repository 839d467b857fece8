package ports

import (
	"context"

	"github.com/bnema/life-assistant/internal/domain"
)

type Reasoner interface {
	Reason(ctx context.Context, input domain.ReasoningInput) (domain.Plan, error)
}

type Interpreter interface {
	Interpret(ctx context.Context, input string, memory domain.Document) (domain.Document, error)
}
