package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/life-assistant/internal/config"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAppendAndTail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "change_log.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Append(ctx, domain.ChangeEntry{
			RecordedAt: fmt.Sprintf("2026-03-01T09:00:0%dZ", i),
			ActionType: domain.ActionAddTask,
			Action:     fmt.Sprintf(`{"type":"add_task","args":{"task":"t%d"}}`, i),
			Result:     fmt.Sprintf("Added task: t%d", i),
			Success:    i%2 == 1,
		}))
	}

	entries, err := store.Tail(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Added task: t3", entries[0].Result)
	assert.Equal(t, "Added task: t5", entries[2].Result)
	assert.True(t, entries[0].Success)
	assert.False(t, entries[1].Success)
	assert.Less(t, entries[0].ID, entries[2].ID)
	assert.Equal(t, `[2026-03-01T09:00:05Z] Action: {"type":"add_task","args":{"task":"t5"}}, Result: Added task: t5`, entries[2].String())
}

func TestStoreTailEmpty(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "change_log.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	entries, err := store.Tail(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = store.Tail(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestNewStoreUsesConfiguredPathAndPrivateMode(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	cfg := viper.New()
	cfg.Set(config.KeyDataDir, dataDir)

	store, err := NewStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	info, err := os.Stat(filepath.Join(dataDir, "data-backend", "change_log.db"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "change_log.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, domain.ChangeEntry{
		RecordedAt: "2026-03-01T09:00:00Z",
		ActionType: domain.ActionGetTime,
		Action:     `{"type":"get_time"}`,
		Result:     "09:00",
		Success:    true,
	}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	entries, err := reopened.Tail(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionGetTime, entries[0].ActionType)
}
