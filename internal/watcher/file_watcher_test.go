package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher creates watcher successfully with valid directories and files
// - NewFileWatcher returns error with a missing path
// - Single file change fires callback after debounce
// - Multiple file changes are batched into one sorted callback
// - Debouncing works (rapid changes coalesced into single callback)
// - Pause/Resume behavior (accumulate during pause, fire on resume)
// - Directory added triggers recursive watch
// - __pycache__ and hidden directories are not watched
// - A single-file root ignores its sibling files
// - Extension filtering (only .py triggers callback)
// - Stop() is idempotent and safe to call concurrently
// - Context cancellation stops watcher

const testDebounce = 100 * time.Millisecond

type recorder struct {
	mu     sync.Mutex
	calls  [][]string
	called chan struct{}
}

func newRecorder() *recorder {
	return &recorder{called: make(chan struct{}, 10)}
}

func (r *recorder) callback(files []string) {
	r.mu.Lock()
	r.calls = append(r.calls, files)
	r.mu.Unlock()
	r.called <- struct{}{}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.called:
	case <-time.After(2 * time.Second):
		t.Fatal("Callback not called after timeout")
	}
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func startWatcher(t *testing.T, paths []string, rec *recorder) FileWatcher {
	t.Helper()
	w, err := NewFileWatcher(paths, []string{".py"}, WithDebounce(testDebounce))
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	require.NoError(t, w.Start(context.Background(), rec.callback))
	// Wait for watcher to initialize
	time.Sleep(100 * time.Millisecond)
	return w
}

func TestNewFileWatcher_Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "mod.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0644))

	w, err := NewFileWatcher([]string{dir, file}, []string{".py"})
	require.NoError(t, err)
	require.NotNil(t, w)
	require.NoError(t, w.Stop())
}

func TestNewFileWatcher_MissingPath(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{filepath.Join(t.TempDir(), "nonexistent")}, []string{".py"})
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, []string{dir}, rec)

	file := filepath.Join(dir, "mod.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0644))

	rec.wait(t)
	calls := rec.snapshot()
	require.NotEmpty(t, calls)
	assert.Equal(t, []string{file}, calls[0])
}

func TestFileWatcher_MultipleFileChangesBatched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, []string{dir}, rec)

	c := filepath.Join(dir, "c.py")
	a := filepath.Join(dir, "a.py")
	b := filepath.Join(dir, "b.py")
	for _, f := range []string{c, a, b} {
		require.NoError(t, os.WriteFile(f, []byte("pass\n"), 0644))
		time.Sleep(20 * time.Millisecond) // Less than debounce time
	}

	rec.wait(t)
	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{a, b, c}, calls[0])
}

func TestFileWatcher_Debouncing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, []string{dir}, rec)

	file := filepath.Join(dir, "mod.py")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	rec.wait(t)
	// Wait a bit more to ensure no additional callbacks
	time.Sleep(3 * testDebounce)

	calls := rec.snapshot()
	require.Len(t, calls, 1, "Should have exactly one callback due to debouncing")
	assert.Equal(t, []string{file}, calls[0])
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	w := startWatcher(t, []string{dir}, rec)

	w.Pause()

	file := filepath.Join(dir, "paused.py")
	require.NoError(t, os.WriteFile(file, []byte("pass\n"), 0644))

	// Wait beyond debounce period - callback should NOT fire
	time.Sleep(5 * testDebounce)
	assert.Empty(t, rec.snapshot(), "No callbacks should fire while paused")

	w.Resume()

	rec.wait(t)
	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], file)
}

func TestFileWatcher_DirectoryAdded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, []string{dir}, rec)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Give the watcher time to pick up the new directory
	time.Sleep(50 * time.Millisecond)

	file := filepath.Join(sub, "__init__.py")
	require.NoError(t, os.WriteFile(file, []byte(""), 0644))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-rec.called:
			for _, call := range rec.snapshot() {
				for _, f := range call {
					if f == file {
						return
					}
				}
			}
		case <-deadline:
			t.Fatal("Change in new directory not reported")
		}
	}
}

func TestFileWatcher_SkipsCacheAndHiddenDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cache := filepath.Join(dir, "__pycache__")
	hidden := filepath.Join(dir, ".venv")
	require.NoError(t, os.Mkdir(cache, 0755))
	require.NoError(t, os.Mkdir(hidden, 0755))

	rec := newRecorder()
	startWatcher(t, []string{dir}, rec)

	require.NoError(t, os.WriteFile(filepath.Join(cache, "cached.py"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(hidden, "site.py"), []byte(""), 0644))

	time.Sleep(5 * testDebounce)
	assert.Empty(t, rec.snapshot())
}

func TestFileWatcher_SingleFileRootIgnoresSiblings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "mod.py")
	require.NoError(t, os.WriteFile(file, []byte(""), 0644))

	rec := newRecorder()
	startWatcher(t, []string{file}, rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.py"), []byte(""), 0644))
	time.Sleep(5 * testDebounce)
	assert.Empty(t, rec.snapshot())

	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0644))
	rec.wait(t)
	assert.Equal(t, []string{file}, rec.snapshot()[0])
}

func TestFileWatcher_ExtensionFiltering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, []string{dir}, rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mod.pyc"), []byte(""), 0644))
	time.Sleep(5 * testDebounce)
	assert.Empty(t, rec.snapshot())

	file := filepath.Join(dir, "mod.py")
	require.NoError(t, os.WriteFile(file, []byte(""), 0644))
	rec.wait(t)
	assert.Equal(t, []string{file}, rec.snapshot()[0])
}

func TestFileWatcher_StopCleanup(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, []string{".py"})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), func([]string) {}))

	require.NoError(t, w.Stop())
	// Calling Stop() again should be safe
	require.NoError(t, w.Stop())
}

func TestFileWatcher_StopWithoutStart(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, []string{".py"})
	require.NoError(t, err)
	require.NoError(t, w.Stop())
}

func TestFileWatcher_ConcurrentStop(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, []string{".py"})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), func([]string) {}))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Stop()
		}()
	}
	wg.Wait()
}

func TestFileWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewFileWatcher([]string{dir}, []string{".py"}, WithDebounce(testDebounce))
	require.NoError(t, err)
	defer w.Stop()

	rec := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, rec.callback))
	time.Sleep(100 * time.Millisecond)

	cancel()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.py"), []byte(""), 0644))
	time.Sleep(5 * testDebounce)
	assert.Empty(t, rec.snapshot())
}
