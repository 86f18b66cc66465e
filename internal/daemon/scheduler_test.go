package daemon

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsJobs(t *testing.T) {
	s, err := NewScheduler(slog.Default())
	require.NoError(t, err)

	var runs atomic.Int32
	id, err := s.Every(context.Background(), "tick", 20*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	s.Start()
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())
}

func TestSchedulerSkipsCanceledContext(t *testing.T) {
	s, err := NewScheduler(slog.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var runs atomic.Int32
	s.execute(ctx, "tick", func(context.Context) error {
		runs.Add(1)
		return nil
	})
	require.Zero(t, runs.Load())
}
