package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// ExpirySweeper deactivates assignments whose validity window has passed.
// The role assignment store satisfies this.
type ExpirySweeper interface {
	DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error)
}

// NewExpirySweepHandler returns the Asynq handler for the expiry sweep.
func NewExpirySweepHandler(store ExpirySweeper, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		started := time.Now()
		affected, err := store.DeactivateExpired(ctx, started)
		if err != nil {
			logger.Error("jobs: expiry sweep failed", slog.Any("error", err))
			return err
		}
		logger.Info("jobs: expiry sweep done",
			slog.Int64("deactivated", affected),
			slog.Duration("took", time.Since(started)))
		return nil
	}
}
