package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubSweeper struct {
	affected int64
	err      error
	calls    int
	lastAsOf time.Time
}

func (s *stubSweeper) DeactivateExpired(_ context.Context, asOf time.Time) (int64, error) {
	s.calls++
	s.lastAsOf = asOf
	return s.affected, s.err
}

func TestExpirySweepHandler(t *testing.T) {
	sweeper := &stubSweeper{affected: 3}
	handler := NewExpirySweepHandler(sweeper, slog.Default())

	task, err := NewExpirySweepTask()
	require.NoError(t, err)

	before := time.Now()
	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, 1, sweeper.calls)
	require.False(t, sweeper.lastAsOf.Before(before))
}

func TestExpirySweepHandlerPropagatesError(t *testing.T) {
	sweeper := &stubSweeper{err: errors.New("db down")}
	handler := NewExpirySweepHandler(sweeper, slog.Default())

	task, err := NewExpirySweepTask()
	require.NoError(t, err)

	// Errors propagate so Asynq retries the sweep.
	require.Error(t, handler(context.Background(), task))
}
