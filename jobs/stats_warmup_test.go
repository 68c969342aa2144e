package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge/internal/roles"
)

type stubReportSource struct {
	failFor map[string]bool
}

func (s *stubReportSource) CompleteRoleReport(_ context.Context, tenantID string) (roles.Report, error) {
	if s.failFor[tenantID] {
		return roles.Report{}, errors.New("stats unavailable")
	}
	return roles.Report{TenantID: tenantID, Detailed: roles.DetailedStats{Stats: roles.Stats{Total: 7}}}, nil
}

func newWarmupFixture(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStatsWarmupHandlerStoresReports(t *testing.T) {
	mr, client := newWarmupFixture(t)
	handler := NewStatsWarmupHandler(&stubReportSource{}, client, slog.Default())

	task, err := NewStatsWarmupTask(StatsWarmupPayload{TenantIDs: []string{"t1", "t2"}})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))

	raw, err := mr.Get("roles:report:t1")
	require.NoError(t, err)
	var report roles.Report
	require.NoError(t, json.Unmarshal([]byte(raw), &report))
	require.Equal(t, "t1", report.TenantID)
	require.Equal(t, 7, report.Detailed.Total)

	_, err = mr.Get("roles:report:t2")
	require.NoError(t, err)
}

func TestStatsWarmupHandlerEmptyPayloadIsGlobal(t *testing.T) {
	mr, client := newWarmupFixture(t)
	handler := NewStatsWarmupHandler(&stubReportSource{}, client, slog.Default())

	task, err := NewStatsWarmupTask(StatsWarmupPayload{})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))

	_, err = mr.Get("roles:report:_global")
	require.NoError(t, err)
}

func TestStatsWarmupHandlerToleratesPartialFailure(t *testing.T) {
	mr, client := newWarmupFixture(t)
	source := &stubReportSource{failFor: map[string]bool{"bad": true}}
	handler := NewStatsWarmupHandler(source, client, slog.Default())

	task, err := NewStatsWarmupTask(StatsWarmupPayload{TenantIDs: []string{"bad", "t1"}})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))

	_, err = mr.Get("roles:report:t1")
	require.NoError(t, err)
	require.False(t, mr.Exists("roles:report:bad"))
}

func TestStatsWarmupHandlerFailsWhenAllTenantsFail(t *testing.T) {
	_, client := newWarmupFixture(t)
	source := &stubReportSource{failFor: map[string]bool{"t1": true, "t2": true}}
	handler := NewStatsWarmupHandler(source, client, slog.Default())

	task, err := NewStatsWarmupTask(StatsWarmupPayload{TenantIDs: []string{"t1", "t2"}})
	require.NoError(t, err)
	require.Error(t, handler(context.Background(), task))
}
