package roles

import (
	"context"
	"fmt"
	"time"
)

// Reporting reads for the statistics aggregator. All of these are plain
// aggregate queries; they run outside any transaction.

// CountActiveByRole groups active assignments by role type.
func (r *PostgresRepository) CountActiveByRole(ctx context.Context, f ListFilters) (map[string]int, error) {
	query := `SELECT role_type, COUNT(*) FROM role_assignments WHERE is_active AND ` + notDeleted
	var args []any
	if f.TenantID != "" {
		args = append(args, f.TenantID)
		query += fmt.Sprintf(" AND tenant_id = $%d", len(args))
	}
	if f.CompanyID != "" {
		args = append(args, f.CompanyID)
		query += fmt.Sprintf(" AND company_id = $%d", len(args))
	}
	query += ` GROUP BY role_type`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("roles: count by role: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("roles: scan role count: %w", err)
		}
		counts[role] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles: count by role: %w", err)
	}
	return counts, nil
}

// CountByStatus partitions a tenant's assignments into active, expired
// and inactive.
func (r *PostgresRepository) CountByStatus(ctx context.Context, tenantID string, now time.Time) (StatusCounts, error) {
	var counts StatusCounts
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE is_active AND (valid_until IS NULL OR valid_until >= $2)),
			COUNT(*) FILTER (WHERE is_active AND valid_until < $2),
			COUNT(*) FILTER (WHERE NOT is_active)
		FROM role_assignments
		WHERE tenant_id = $1 AND `+notDeleted,
		tenantID, now).Scan(&counts.Active, &counts.Expired, &counts.Inactive)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("roles: count by status: %w", err)
	}
	return counts, nil
}

// CountActiveByCompany groups a tenant's active assignments by company.
func (r *PostgresRepository) CountActiveByCompany(ctx context.Context, tenantID string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT company_id, COUNT(*) FROM role_assignments
		WHERE tenant_id = $1 AND is_active AND `+notDeleted+`
		GROUP BY company_id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("roles: count by company: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var company string
		var n int
		if err := rows.Scan(&company, &n); err != nil {
			return nil, fmt.Errorf("roles: scan company count: %w", err)
		}
		counts[company] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles: count by company: %w", err)
	}
	return counts, nil
}

// CountCreatedSince counts assignments created at or after since.
func (r *PostgresRepository) CountCreatedSince(ctx context.Context, tenantID string, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM role_assignments
		WHERE tenant_id = $1 AND created_at >= $2 AND `+notDeleted, tenantID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("roles: count created since: %w", err)
	}
	return n, nil
}

// CountCreatedBetween counts assignments created inside [start, end].
func (r *PostgresRepository) CountCreatedBetween(ctx context.Context, tenantID string, start, end time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM role_assignments
		WHERE tenant_id = $1 AND created_at BETWEEN $2 AND $3 AND `+notDeleted, tenantID, start, end).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("roles: count created between: %w", err)
	}
	return n, nil
}

// CountDeactivatedBetween counts assignments deactivated inside [start, end].
func (r *PostgresRepository) CountDeactivatedBetween(ctx context.Context, tenantID string, start, end time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM role_assignments
		WHERE tenant_id = $1 AND deactivated_at BETWEEN $2 AND $3 AND `+notDeleted, tenantID, start, end).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("roles: count deactivated between: %w", err)
	}
	return n, nil
}

// ListWithExpiry returns assignments carrying a validity window.
func (r *PostgresRepository) ListWithExpiry(ctx context.Context, tenantID string) ([]Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM role_assignments WHERE valid_until IS NOT NULL AND is_active AND ` + notDeleted
	var args []any
	if tenantID != "" {
		args = append(args, tenantID)
		query += fmt.Sprintf(" AND tenant_id = $%d", len(args))
	}
	query += ` ORDER BY valid_until ASC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("roles: list with expiry: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}
