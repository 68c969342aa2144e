package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/skillforge/skillforge/internal/roles"
)

// reportKeyPrefix namespaces the precomputed reports in redis.
const reportKeyPrefix = "roles:report:"

// reportTTL keeps warmed reports around until the next daily run.
const reportTTL = 26 * time.Hour

func reportKey(tenantID string) string {
	if tenantID == "" {
		return reportKeyPrefix + "_global"
	}
	return reportKeyPrefix + tenantID
}

// ReportSource computes complete role reports. The statistics aggregator
// satisfies this.
type ReportSource interface {
	CompleteRoleReport(ctx context.Context, tenantID string) (roles.Report, error)
}

// NewStatsWarmupHandler returns the Asynq handler that precomputes role
// reports per tenant and stores them in redis. A failure on one tenant is
// logged and does not stop the rest.
func NewStatsWarmupHandler(source ReportSource, client *redis.Client, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload StatsWarmupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tenants := payload.TenantIDs
		if len(tenants) == 0 {
			// No tenant filter means one platform-wide report.
			tenants = []string{""}
		}
		var failed int
		for _, tenantID := range tenants {
			report, err := source.CompleteRoleReport(ctx, tenantID)
			if err != nil {
				logger.Warn("jobs: stats warmup skipped tenant",
					slog.String("tenant", tenantID), slog.Any("error", err))
				failed++
				continue
			}
			raw, err := json.Marshal(report)
			if err != nil {
				logger.Warn("jobs: stats warmup encode failed",
					slog.String("tenant", tenantID), slog.Any("error", err))
				failed++
				continue
			}
			if err := client.Set(ctx, reportKey(tenantID), raw, reportTTL).Err(); err != nil {
				logger.Warn("jobs: stats warmup store failed",
					slog.String("tenant", tenantID), slog.Any("error", err))
				failed++
			}
		}
		if failed == len(tenants) {
			return fmt.Errorf("jobs: stats warmup failed for all %d tenants", failed)
		}
		return nil
	}
}
