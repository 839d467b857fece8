package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
	"go.uber.org/zap"
)

type Role string

const (
	RoleFrontend Role = "frontend"
	RoleBackend  Role = "backend"
)

// MemoryService is the entry point both loops use to touch memory documents.
// The frontend role may read backend memory but its writes there are dropped
// with a warning.
type MemoryService struct {
	store  ports.MemoryStore
	role   Role
	logger *zap.Logger
}

func NewMemoryService(store ports.MemoryStore, role Role, logger *zap.Logger) *MemoryService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MemoryService{store: store, role: role, logger: logger}
}

func (s *MemoryService) Role() Role {
	return s.role
}

func (s *MemoryService) Load(ctx context.Context, kind domain.DocumentKind) (domain.Document, error) {
	doc, err := s.store.Load(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load %s memory: %w", kind, err)
	}

	return doc, nil
}

func (s *MemoryService) Get(ctx context.Context, kind domain.DocumentKind, path []string) (any, bool, error) {
	doc, err := s.Load(ctx, kind)
	if err != nil {
		return nil, false, err
	}

	value, ok := doc.Get(path)
	return value, ok, nil
}

func (s *MemoryService) Update(ctx context.Context, kind domain.DocumentKind, partial domain.Document) (domain.Document, error) {
	if !s.writable(kind, "update") {
		return s.Load(ctx, kind)
	}

	doc, err := s.store.Update(ctx, kind, partial)
	if err != nil {
		return nil, fmt.Errorf("update %s memory: %w", kind, err)
	}

	return doc, nil
}

func (s *MemoryService) Mutate(ctx context.Context, kind domain.DocumentKind, fn func(domain.Document) error) (domain.Document, error) {
	if !s.writable(kind, "mutate") {
		return s.Load(ctx, kind)
	}

	doc, err := s.store.Mutate(ctx, kind, fn)
	if err != nil {
		return nil, fmt.Errorf("update %s memory: %w", kind, err)
	}

	return doc, nil
}

func (s *MemoryService) SetPath(ctx context.Context, kind domain.DocumentKind, path []string, value any) error {
	_, err := s.Mutate(ctx, kind, func(doc domain.Document) error {
		return doc.SetPath(path, value)
	})
	return err
}

func (s *MemoryService) AppendToList(ctx context.Context, kind domain.DocumentKind, path []string, value any) error {
	_, err := s.Mutate(ctx, kind, func(doc domain.Document) error {
		return doc.AppendToList(path, value)
	})
	return err
}

func (s *MemoryService) RemoveFromList(ctx context.Context, kind domain.DocumentKind, path []string, value any) (bool, error) {
	var removed bool
	_, err := s.Mutate(ctx, kind, func(doc domain.Document) error {
		var err error
		removed, err = doc.RemoveFromList(path, value)
		return err
	})
	if err != nil {
		return false, err
	}

	return removed, nil
}

// Search returns the dotted paths of user memory whose key or string value
// contains query, case-insensitively.
func (s *MemoryService) Search(ctx context.Context, kind domain.DocumentKind, query string) (map[string]any, error) {
	doc, err := s.Load(ctx, kind)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	matches := map[string]any{}
	if needle == "" {
		return matches, nil
	}

	var walk func(prefix string, value any)
	walk = func(prefix string, value any) {
		switch v := value.(type) {
		case map[string]any:
			for key, child := range v {
				path := key
				if prefix != "" {
					path = prefix + "." + key
				}
				if strings.Contains(strings.ToLower(key), needle) {
					matches[path] = child
					continue
				}
				walk(path, child)
			}
		case []any:
			for i, child := range v {
				walk(fmt.Sprintf("%s.%d", prefix, i), child)
			}
		case string:
			if strings.Contains(strings.ToLower(v), needle) {
				matches[prefix] = v
			}
		}
	}

	body := doc.Clone()
	delete(body, domain.RevisionKey)
	walk("", map[string]any(body))

	return matches, nil
}

func (s *MemoryService) writable(kind domain.DocumentKind, op string) bool {
	if s.role == RoleFrontend && kind == domain.DocumentBackend {
		s.logger.Warn("ignoring frontend write to backend memory",
			zap.String("op", op),
			zap.Error(domain.ErrBackendPartition),
		)
		return false
	}

	return true
}
