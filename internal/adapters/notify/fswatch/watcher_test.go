package fswatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcherSignalsOnMatchingFile(t *testing.T) {
	dir := t.TempDir()
	watcher, err := New(dir, []string{"backend_request.json"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "backend_request.json"), []byte(`{"id":"r1"}`), 0o600))

	select {
	case <-watcher.Events():
	case <-time.After(5 * time.Second):
		t.Fatal("no event for matching file")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherSignalsOnRenameIntoPlace(t *testing.T) {
	dir := t.TempDir()
	watcher, err := New(dir, []string{"backend_response.json"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	temp := filepath.Join(dir, ".backend_response.json-1.tmp")
	require.NoError(t, os.WriteFile(temp, []byte(`{"id":"r1"}`), 0o600))
	drain(watcher)
	require.NoError(t, os.Rename(temp, filepath.Join(dir, "backend_response.json")))

	select {
	case <-watcher.Events():
	case <-time.After(5 * time.Second):
		t.Fatal("no event for renamed file")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	watcher, err := New(dir, []string{"backend_request.json"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "task_buffer.json"), []byte(`[]`), 0o600))

	select {
	case <-watcher.Events():
		t.Fatal("unexpected event for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	watcher, err := New(filepath.Join(t.TempDir(), "src"), nil, nil)
	require.NoError(t, err)

	assert.NoError(t, watcher.Close())
	assert.NoError(t, watcher.Close())
}

func drain(w *Watcher) {
	for {
		select {
		case <-w.Events():
		case <-time.After(50 * time.Millisecond):
			return
		}
	}
}
