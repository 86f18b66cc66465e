package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	out := make(chan struct{}, 1)
	w, err := NewSiteWatcher(dir, 100*time.Millisecond, out, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	for i := 0; i < 5; i++ {
		writeScript(t, dir, "navtreedata.js")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-out:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload signal")
	}
	// One burst, one signal.
	select {
	case <-out:
		t.Fatal("burst produced more than one signal")
	case <-time.After(300 * time.Millisecond):
	}
}

func writeScript(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("var NAVTREE = [];"), 0o600))
}
