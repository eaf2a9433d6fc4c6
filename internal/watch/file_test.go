package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWatchedFile(t *testing.T, opts ...Option) (string, *FileWatcher) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edit.lua")
	require.NoError(t, os.WriteFile(path, []byte("-- v1\n"), 0o644))

	w, err := NewFileWatcher(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return path, w
}

func waitEvent(t *testing.T, w *FileWatcher, timeout time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev, true
	case <-time.After(timeout):
		return Event{}, false
	}
}

func TestNewFileWatcherMissingPath(t *testing.T) {
	_, err := NewFileWatcher(filepath.Join(t.TempDir(), "missing.lua"))
	assert.True(t, errors.Is(err, ErrPathNotExist), "got %v", err)
}

func TestFileWatcherPathIsAbsolute(t *testing.T) {
	_, w := newWatchedFile(t)
	assert.True(t, filepath.IsAbs(w.Path()))
}

func TestFileWatcherWrite(t *testing.T) {
	path, w := newWatchedFile(t, WithDebounce(20*time.Millisecond))

	require.NoError(t, os.WriteFile(path, []byte("-- v2\n"), 0o644))

	ev, ok := waitEvent(t, w, 2*time.Second)
	require.True(t, ok, "no event")
	assert.Equal(t, w.Path(), ev.Path)
	assert.True(t, ev.Op.Has(OpWrite), "op %s", ev.Op)
	assert.False(t, ev.Time.IsZero())
}

func TestFileWatcherCoalescesBurst(t *testing.T) {
	path, w := newWatchedFile(t, WithDebounce(200*time.Millisecond))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	_, ok := waitEvent(t, w, 2*time.Second)
	require.True(t, ok, "no event")
	_, ok = waitEvent(t, w, 400*time.Millisecond)
	assert.False(t, ok, "burst produced more than one event")
}

func TestFileWatcherRenameReplace(t *testing.T) {
	path, w := newWatchedFile(t, WithDebounce(20*time.Millisecond))

	tmp := filepath.Join(filepath.Dir(path), ".edit.lua.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("-- v2\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	ev, ok := waitEvent(t, w, 2*time.Second)
	require.True(t, ok, "no event")
	assert.Equal(t, w.Path(), ev.Path)
	assert.True(t, ev.Op.Has(OpCreate) || ev.Op.Has(OpRename), "op %s", ev.Op)
}

func TestFileWatcherIgnoresSiblings(t *testing.T) {
	path, w := newWatchedFile(t, WithDebounce(20*time.Millisecond))

	other := filepath.Join(filepath.Dir(path), "other.txt")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	_, ok := waitEvent(t, w, 300*time.Millisecond)
	assert.False(t, ok, "event for a sibling file")
}

func TestFileWatcherClose(t *testing.T) {
	_, w := newWatchedFile(t)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Events()
	assert.False(t, ok, "events channel still open")
	_, ok = <-w.Errors()
	assert.False(t, ok, "errors channel still open")
}
