package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/bnema/life-assistant/internal/config"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const maxMutateAttempts = 3

var documentPathKeys = map[domain.DocumentKind]string{
	domain.DocumentUser:    config.KeyUserMemoryPath,
	domain.DocumentSystem:  config.KeySystemMemoryPath,
	domain.DocumentBackend: config.KeyBackendMemoryPath,
}

// MemoryStore keeps each memory document in its own pretty-printed JSON file.
// Every document carries a revision; writes based on a stale revision fail
// with domain.ErrRevisionConflict.
type MemoryStore struct {
	paths  map[domain.DocumentKind]string
	clock  ports.Clock
	logger *zap.Logger
}

var _ ports.MemoryStore = (*MemoryStore)(nil)

func NewMemoryStore(cfg *viper.Viper, clock ports.Clock, logger *zap.Logger) (*MemoryStore, error) {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	paths := make(map[domain.DocumentKind]string, len(documentPathKeys))
	for kind, key := range documentPathKeys {
		path, err := config.Path(cfg, key)
		if err != nil {
			return nil, fmt.Errorf("resolve %s memory path: %w", kind, err)
		}
		paths[kind] = path
	}

	return &MemoryStore{paths: paths, clock: clock, logger: logger}, nil
}

func (s *MemoryStore) PathFor(kind domain.DocumentKind) string {
	return s.paths[kind]
}

func (s *MemoryStore) Load(ctx context.Context, kind domain.DocumentKind) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.pathFor(kind)
	if err != nil {
		return nil, err
	}

	mu := lockForPath(path)
	mu.RLock()
	defer mu.RUnlock()

	return s.readDocument(kind, path), nil
}

// Save writes doc if the file still holds doc's revision, then bumps the
// revision on both the file and doc.
func (s *MemoryStore) Save(ctx context.Context, kind domain.DocumentKind, doc domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathFor(kind)
	if err != nil {
		return err
	}

	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	current := s.readDocument(kind, path).Revision()
	if doc.Revision() != current {
		return fmt.Errorf("save %s memory: %w (have %d, file has %d)", kind, domain.ErrRevisionConflict, doc.Revision(), current)
	}

	next := doc.Clone()
	next.SetRevision(current + 1)
	if err := writeJSONFile(path, string(kind)+" memory", next); err != nil {
		return err
	}

	doc.SetRevision(current + 1)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, kind domain.DocumentKind, partial domain.Document) (domain.Document, error) {
	incoming := partial.Clone()
	delete(incoming, domain.RevisionKey)

	return s.Mutate(ctx, kind, func(doc domain.Document) error {
		doc.Merge(incoming)
		return nil
	})
}

// Mutate runs fn against the current document and persists the result. When
// another writer bumps the revision while fn runs, fn is retried on the fresh
// document a bounded number of times.
func (s *MemoryStore) Mutate(ctx context.Context, kind domain.DocumentKind, fn func(domain.Document) error) (domain.Document, error) {
	path, err := s.pathFor(kind)
	if err != nil {
		return nil, err
	}

	mu := lockForPath(path)
	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		saved, retry, err := s.mutateOnce(kind, path, mu, fn)
		if err != nil {
			return nil, err
		}
		if !retry {
			return saved, nil
		}

		s.logger.Warn("memory document changed during update, retrying",
			zap.String("kind", string(kind)),
			zap.Int("attempt", attempt+1),
		)
	}

	return nil, fmt.Errorf("update %s memory: %w", kind, domain.ErrRevisionConflict)
}

func (s *MemoryStore) mutateOnce(kind domain.DocumentKind, path string, mu interface {
	Lock()
	Unlock()
}, fn func(domain.Document) error) (domain.Document, bool, error) {
	mu.Lock()
	defer mu.Unlock()

	doc := s.readDocument(kind, path)
	base := doc.Revision()

	if err := fn(doc); err != nil {
		return nil, false, err
	}

	if s.readDocument(kind, path).Revision() != base {
		return nil, true, nil
	}

	doc.SetRevision(base + 1)
	if err := writeJSONFile(path, string(kind)+" memory", doc); err != nil {
		return nil, false, err
	}

	return doc.Clone(), false, nil
}

// readDocument never fails: a missing, unreadable or corrupt file yields the
// default document at revision 0.
func (s *MemoryStore) readDocument(kind domain.DocumentKind, path string) domain.Document {
	defaults := domain.DefaultDocument(kind, s.clock.Now())

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("read memory file, using defaults", zap.String("path", path), zap.Error(err))
		}
		return defaults
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		s.logger.Warn("decode memory file, using defaults", zap.String("path", path), zap.Error(err))
		return defaults
	}

	for key, value := range defaults {
		if _, ok := doc[key]; !ok {
			doc[key] = value
		}
	}

	return doc
}

func (s *MemoryStore) pathFor(kind domain.DocumentKind) (string, error) {
	if err := kind.Validate(); err != nil {
		return "", err
	}

	return s.paths[kind], nil
}
