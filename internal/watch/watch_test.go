package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bianoble/macrame/internal/logger"
)

func startWatcher(t *testing.T, setup func(w *Watcher)) <-chan string {
	t.Helper()
	w, err := New(logger.NewLogger(logger.TestConfig()), 50*time.Millisecond)
	require.NoError(t, err)
	setup(w)

	changes := make(chan string, 8)
	w.OnChange(func(path string) { changes <- path })

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
		assert.NoError(t, w.Close())
	})
	return changes
}

func waitFor(t *testing.T, changes <-chan string) string {
	t.Helper()
	select {
	case p := <-changes:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a change notification")
		return ""
	}
}

func TestWatcherReportsLayerChanges(t *testing.T) {
	root := t.TempDir()
	port := filepath.Join(root, "port", "avr")
	require.NoError(t, os.MkdirAll(port, 0755))

	changes := startWatcher(t, func(w *Watcher) {
		require.NoError(t, w.AddProject(root, "avr", ".env"))
	})

	t.Run("Should ignore unrelated files", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "macrame.toml"), []byte("# root\n"), 0644))
		got := waitFor(t, changes)
		assert.Equal(t, "macrame.toml", filepath.Base(got))
	})

	t.Run("Should report the port layer", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(port, "config.yaml"), []byte("{}\n"), 0644))
		got := waitFor(t, changes)
		assert.Equal(t, filepath.Join(port, "config.yaml"), got)
	})

	t.Run("Should report the dotenv file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("MCU=x\n"), 0644))
		got := waitFor(t, changes)
		assert.Equal(t, ".env", filepath.Base(got))
	})
}

func TestWatcherCoalescesBursts(t *testing.T) {
	root := t.TempDir()
	changes := startWatcher(t, func(w *Watcher) {
		require.NoError(t, w.Add(root, "macrame.toml"))
	})

	path := filepath.Join(root, "macrame.toml")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0644))
	}
	waitFor(t, changes)

	select {
	case p := <-changes:
		t.Fatalf("unexpected second notification for %s", p)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestAddSkipsMissingDirectory(t *testing.T) {
	w, err := New(logger.NewLogger(logger.TestConfig()), 0)
	require.NoError(t, err)
	defer w.Close()

	assert.NoError(t, w.Add(filepath.Join(t.TempDir(), "missing"), "config.toml"))
	assert.NoError(t, w.AddProject(t.TempDir(), "nope", ""))
}
