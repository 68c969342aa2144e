package roles

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skillforge/skillforge/internal/authz"
)

// recentAssignmentWindow bounds the "assigned recently" count in the
// detailed statistics.
const recentAssignmentWindow = 30 * 24 * time.Hour

// DefaultExpiryLookahead is the window for expiration statistics when the
// caller does not supply one.
const DefaultExpiryLookahead = 30

// DetailedStats extends the per-role distribution with status and company
// breakdowns.
type DetailedStats struct {
	Stats
	Status         StatusCounts   `json:"status"`
	ByCompany      map[string]int `json:"byCompany"`
	AssignedLast30 int            `json:"assignedLast30Days"`
}

// ExpirationStats partitions assignments that carry a validity window
// into two disjoint sets: already expired, and expiring within the
// lookahead window.
type ExpirationStats struct {
	Expired     []Assignment `json:"expired"`
	Expiring    []Assignment `json:"expiring"`
	DaysAhead   int          `json:"daysAhead"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// TimeSeriesStats reports assignment churn inside a window.
type TimeSeriesStats struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Assigned    int       `json:"assigned"`
	Deactivated int       `json:"deactivated"`
}

// Report is the merged output of the complete role report fan-out.
type Report struct {
	TenantID    string          `json:"tenantId"`
	Detailed    DetailedStats   `json:"detailed"`
	Expirations ExpirationStats `json:"expirations"`
	OverTime    TimeSeriesStats `json:"overTime"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// StatsService provides read-only reporting over the role assignment
// store. Nothing in here mutates state; a momentarily inconsistent
// snapshot across the concurrent reads is acceptable.
type StatsService struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewStatsService constructs a StatsService.
func NewStatsService(repo Repository, logger *slog.Logger) *StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsService{repo: repo, logger: logger, now: time.Now}
}

// RoleStatistics returns the active-assignment distribution for a tenant,
// zero-filled for every canonical role type.
func (s *StatsService) RoleStatistics(ctx context.Context, tenantID string) (Stats, error) {
	counts, err := s.repo.CountActiveByRole(ctx, ListFilters{TenantID: tenantID})
	if err != nil {
		return Stats{}, err
	}
	byRole := make(map[string]int)
	total := 0
	for _, role := range authz.CanonicalRoles() {
		byRole[role] = counts[role]
	}
	for role, n := range counts {
		byRole[role] = n
		total += n
	}
	return Stats{ByRole: byRole, Total: total, GeneratedAt: s.now()}, nil
}

// DetailedRoleStatistics adds status counts, the per-company breakdown and
// the recent-assignment count.
func (s *StatsService) DetailedRoleStatistics(ctx context.Context, tenantID string) (DetailedStats, error) {
	now := s.now()

	base, err := s.RoleStatistics(ctx, tenantID)
	if err != nil {
		return DetailedStats{}, err
	}
	status, err := s.repo.CountByStatus(ctx, tenantID, now)
	if err != nil {
		return DetailedStats{}, err
	}
	byCompany, err := s.repo.CountActiveByCompany(ctx, tenantID)
	if err != nil {
		return DetailedStats{}, err
	}
	recent, err := s.repo.CountCreatedSince(ctx, tenantID, now.Add(-recentAssignmentWindow))
	if err != nil {
		return DetailedStats{}, err
	}

	return DetailedStats{
		Stats:          base,
		Status:         status,
		ByCompany:      byCompany,
		AssignedLast30: recent,
	}, nil
}

// ExpirationStats partitions assignments with a validity window as of
// now: expired strictly before now, expiring between now and
// now+daysAhead inclusive. The two sets never overlap.
func (s *StatsService) ExpirationStats(ctx context.Context, tenantID string, daysAhead int) (ExpirationStats, error) {
	if daysAhead <= 0 {
		daysAhead = DefaultExpiryLookahead
	}
	assignments, err := s.repo.ListWithExpiry(ctx, tenantID)
	if err != nil {
		return ExpirationStats{}, err
	}

	now := s.now()
	horizon := now.Add(time.Duration(daysAhead) * 24 * time.Hour)
	out := ExpirationStats{
		Expired:     []Assignment{},
		Expiring:    []Assignment{},
		DaysAhead:   daysAhead,
		GeneratedAt: now,
	}
	for _, a := range assignments {
		if a.ValidUntil == nil {
			continue
		}
		switch {
		case a.ValidUntil.Before(now):
			out.Expired = append(out.Expired, a)
		case !a.ValidUntil.After(horizon):
			out.Expiring = append(out.Expiring, a)
		}
	}
	return out, nil
}

// RoleStatsOverTime counts assignments created and deactivated within the
// window.
func (s *StatsService) RoleStatsOverTime(ctx context.Context, tenantID string, start, end time.Time) (TimeSeriesStats, error) {
	assigned, err := s.repo.CountCreatedBetween(ctx, tenantID, start, end)
	if err != nil {
		return TimeSeriesStats{}, err
	}
	deactivated, err := s.repo.CountDeactivatedBetween(ctx, tenantID, start, end)
	if err != nil {
		return TimeSeriesStats{}, err
	}
	return TimeSeriesStats{Start: start, End: end, Assigned: assigned, Deactivated: deactivated}, nil
}

// CompleteRoleReport fans out the component reports concurrently and
// merges them. The reads are independent; no ordering between them is
// required.
func (s *StatsService) CompleteRoleReport(ctx context.Context, tenantID string) (Report, error) {
	now := s.now()
	report := Report{TenantID: tenantID, GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		detailed, err := s.DetailedRoleStatistics(gctx, tenantID)
		if err != nil {
			return err
		}
		report.Detailed = detailed
		return nil
	})
	g.Go(func() error {
		exp, err := s.ExpirationStats(gctx, tenantID, DefaultExpiryLookahead)
		if err != nil {
			return err
		}
		report.Expirations = exp
		return nil
	})
	g.Go(func() error {
		series, err := s.RoleStatsOverTime(gctx, tenantID, now.Add(-recentAssignmentWindow), now)
		if err != nil {
			return err
		}
		report.OverTime = series
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("roles: complete report failed", slog.Any("error", err))
		return Report{}, err
	}
	return report, nil
}
