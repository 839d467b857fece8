package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bnema/life-assistant/internal/config"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func newTestStore(t *testing.T) (*MemoryStore, string) {
	t.Helper()

	dataDir := t.TempDir()
	cfg := viper.New()
	cfg.Set(config.KeyDataDir, dataDir)

	store, err := NewMemoryStore(cfg, fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}, nil)
	require.NoError(t, err)

	return store, dataDir
}

func TestMemoryStoreLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	store, dataDir := newTestStore(t)

	doc, err := store.Load(context.Background(), domain.DocumentSystem)
	require.NoError(t, err)
	assert.Equal(t, int64(0), doc.Revision())

	var tasks domain.MultiCycleTasks
	require.NoError(t, doc.Decode(domain.KeyMultiCycleTasks, &tasks))
	assert.Empty(t, tasks.ActiveSequences)
	assert.Nil(t, tasks.CurrentSequenceID)

	_, err = os.Stat(filepath.Join(dataDir, "data-user", "system_memory.json"))
	assert.True(t, os.IsNotExist(err), "load must not create the file")
}

func TestMemoryStoreLoadCorruptFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	path := store.PathFor(domain.DocumentUser)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	doc, err := store.Load(context.Background(), domain.DocumentUser)
	require.NoError(t, err)

	_, ok := doc["personal_info"]
	assert.True(t, ok)
}

func TestMemoryStoreSaveBumpsRevisionAndRejectsStaleWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newTestStore(t)

	first, err := store.Load(ctx, domain.DocumentUser)
	require.NoError(t, err)
	stale := first.Clone()

	require.NoError(t, first.SetPath([]string{"personal_info", "name"}, "Ada"))
	require.NoError(t, store.Save(ctx, domain.DocumentUser, first))
	assert.Equal(t, int64(1), first.Revision())

	require.NoError(t, stale.SetPath([]string{"personal_info", "name"}, "Grace"))
	err = store.Save(ctx, domain.DocumentUser, stale)
	require.ErrorIs(t, err, domain.ErrRevisionConflict)

	reloaded, err := store.Load(ctx, domain.DocumentUser)
	require.NoError(t, err)
	name, ok := reloaded.Get([]string{"personal_info", "name"})
	require.True(t, ok)
	assert.Equal(t, "Ada", name)
	assert.Equal(t, int64(1), reloaded.Revision())
}

func TestMemoryStoreSaveWritesIndentedJSON(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newTestStore(t)

	doc, err := store.Load(ctx, domain.DocumentBackend)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, domain.DocumentBackend, doc))

	data, err := os.ReadFile(store.PathFor(domain.DocumentBackend))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"backend_state\": {")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 1, decoded[domain.RevisionKey])

	info, err := os.Stat(store.PathFor(domain.DocumentBackend))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestMemoryStoreUpdateDeepMergesAndIgnoresRevision(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.Update(ctx, domain.DocumentUser, domain.Document{
		"personal_info": map[string]any{"name": "Ada", "city": "London"},
	})
	require.NoError(t, err)

	saved, err := store.Update(ctx, domain.DocumentUser, domain.Document{
		"personal_info":    map[string]any{"city": "Paris"},
		domain.RevisionKey: float64(99),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), saved.Revision())
	info, ok := saved.Get([]string{"personal_info"})
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "Ada", "city": "Paris"}, info)
}

func TestMemoryStoreMutateErrorLeavesFileUntouched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.Mutate(ctx, domain.DocumentSystem, func(doc domain.Document) error {
		doc["scratch"] = true
		return domain.ErrEmptyPath
	})
	require.ErrorIs(t, err, domain.ErrEmptyPath)

	_, statErr := os.Stat(store.PathFor(domain.DocumentSystem))
	assert.True(t, os.IsNotExist(statErr))
}

func TestMemoryStoreConcurrentMutationsAreNotLost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newTestStore(t)

	const writers = 16
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := store.Mutate(ctx, domain.DocumentBackend, func(doc domain.Document) error {
				return doc.AppendToList([]string{domain.KeyExecutionHistory}, "entry")
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	doc, err := store.Load(ctx, domain.DocumentBackend)
	require.NoError(t, err)
	history, ok := doc[domain.KeyExecutionHistory].([]any)
	require.True(t, ok)
	assert.Len(t, history, writers)
	assert.Equal(t, int64(writers), doc.Revision())
}

func TestMemoryStoreRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	_, err := store.Load(context.Background(), domain.DocumentKind("frontend"))
	require.Error(t, err)
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Load(ctx, domain.DocumentUser)
	require.ErrorIs(t, err, context.Canceled)
}
