package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string, debounce time.Duration, count *atomic.Int64) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	w := New(root, debounce, nil, func(context.Context) {
		count.Add(1)
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give the watcher time to register its watches.
	time.Sleep(100 * time.Millisecond)
	return cancel
}

func waitForCount(t *testing.T, count *atomic.Int64, want int64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if count.Load() >= want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("expected at least %d reingest calls, got %d", want, count.Load())
}

func TestWatcher_BurstOfWritesTriggersOneReingest(t *testing.T) {
	root := t.TempDir()
	var count atomic.Int64
	startWatcher(t, root, 200*time.Millisecond, &count)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "doc.md"), []byte("v"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	waitForCount(t, &count, 1)
	// The burst fell inside one debounce window.
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int64(1), count.Load())
}

func TestWatcher_UnsupportedFilesIgnored(t *testing.T) {
	root := t.TempDir()
	var count atomic.Int64
	startWatcher(t, root, 100*time.Millisecond, &count)

	require.NoError(t, os.WriteFile(filepath.Join(root, "core.bin"), []byte{0}, 0o644))
	time.Sleep(500 * time.Millisecond)
	assert.Zero(t, count.Load())
}

func TestWatcher_NewSubdirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	var count atomic.Int64
	startWatcher(t, root, 100*time.Millisecond, &count)

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	waitForCount(t, &count, 1)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "nested.txt"), []byte("x"), 0o644))
	waitForCount(t, &count, 2)
}

func TestWatcher_MissingRootFails(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "gone"), time.Second, nil, func(context.Context) {})
	err := w.Run(context.Background())
	assert.Error(t, err)
}
