package project

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilBchii/tide/internal/fileid"
	"github.com/lilBchii/tide/internal/logging"
)

type changeRecorder struct {
	mu      sync.Mutex
	batches [][]Change
	signal  chan struct{}
}

func newChangeRecorder() *changeRecorder {
	return &changeRecorder{signal: make(chan struct{}, 10)}
}

func (r *changeRecorder) handle(changes []Change) {
	r.mu.Lock()
	r.batches = append(r.batches, changes)
	r.mu.Unlock()
	select {
	case r.signal <- struct{}{}:
	default:
	}
}

func (r *changeRecorder) wait(t *testing.T) []Change {
	t.Helper()
	select {
	case <-r.signal:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change batch")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches[len(r.batches)-1]
}

func startWatcher(t *testing.T, root string) (*Watcher, *changeRecorder) {
	t.Helper()
	watcher, err := NewWatcher(root, 50*time.Millisecond, logging.Discard())
	require.NoError(t, err)

	recorder := newChangeRecorder()
	watcher.AddHandler(recorder.handle)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, watcher.Start(ctx))
	t.Cleanup(func() { watcher.Stop() })
	return watcher, recorder
}

func TestWatcherReportsSourceChange(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "main.typ", []byte("= Old"))
	_, recorder := startWatcher(t, root)

	require.NoError(t, os.WriteFile(path, []byte("= New"), 0o600))

	batch := recorder.wait(t)
	require.NotEmpty(t, batch)
	assert.Equal(t, fileid.VirtualID("/main.typ"), batch[0].ID)
}

func TestWatcherIgnoresForeignFiles(t *testing.T) {
	root := t.TempDir()
	typPath := writeFile(t, root, "main.typ", []byte("= Main"))
	_, recorder := startWatcher(t, root)

	writeFile(t, root, "notes.md", []byte("ignored"))
	require.NoError(t, os.WriteFile(typPath, []byte("= Edited"), 0o600))

	batch := recorder.wait(t)
	for _, change := range batch {
		assert.NotEqual(t, "notes.md", filepath.Base(change.Path))
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "main.typ", []byte("= 0"))
	_, recorder := startWatcher(t, root)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("= edit"), 0o600))
	}

	batch := recorder.wait(t)
	// Rapid edits to one file collapse into a single change.
	assert.Len(t, batch, 1)
}

func TestWatcherReportsDeletion(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "gone.typ", []byte("= Gone"))
	_, recorder := startWatcher(t, root)

	require.NoError(t, os.Remove(path))

	batch := recorder.wait(t)
	require.NotEmpty(t, batch)
	assert.Equal(t, ChangeDeleted, batch[0].Kind)
	assert.Equal(t, fileid.VirtualID("/gone.typ"), batch[0].ID)
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "created", ChangeCreated.String())
	assert.Equal(t, "modified", ChangeModified.String())
	assert.Equal(t, "deleted", ChangeDeleted.String())
}
