// Package jobs contains the background tasks of the platform: the role
// expiry sweep and the role statistics warmup, both scheduled through
// Asynq.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRoleExpirySweep deactivates role assignments whose validity
	// window has passed.
	TaskRoleExpirySweep = "roles:expiry_sweep"
	// TaskRoleStatsWarmup precomputes role reports for the given tenants.
	TaskRoleStatsWarmup = "roles:stats_warmup"
)

// ExpirySweepPayload carries no parameters today; the sweep always runs
// against "now".
type ExpirySweepPayload struct{}

// NewExpirySweepTask constructs an expiry sweep task.
func NewExpirySweepTask() (*asynq.Task, error) {
	data, err := json.Marshal(ExpirySweepPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRoleExpirySweep, data), nil
}

// StatsWarmupPayload lists the tenants whose reports to precompute.
type StatsWarmupPayload struct {
	TenantIDs []string `json:"tenantIds"`
}

// NewStatsWarmupTask constructs a stats warmup task.
func NewStatsWarmupTask(payload StatsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRoleStatsWarmup, data), nil
}
