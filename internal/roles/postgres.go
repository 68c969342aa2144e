package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillforge/skillforge/internal/platform/db"
)

// uniqueActiveScopeConstraint backs the duplicate-role guard. The
// application-level pre-check in the service is advisory only; this index
// is the authoritative conflict signal under concurrent writes.
const uniqueActiveScopeConstraint = "uq_role_assignments_active_scope"

// notDeleted is the shared soft-delete predicate. Every read in this file
// must include it.
const notDeleted = "deleted_at IS NULL"

const assignmentColumns = "id, person_id, role_type, company_id, tenant_id, is_active, is_primary, valid_until, created_at, updated_at, deactivated_at, deleted_at"

// PostgresRepository provides pgx backed persistence for role assignments.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// pgQuerier abstracts over the pool and a transaction so the insert path
// is shared between both.
type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.PersonID, &a.RoleType, &a.CompanyID, &a.TenantID, &a.IsActive, &a.IsPrimary, &a.ValidUntil, &a.CreatedAt, &a.UpdatedAt, &a.DeactivatedAt, &a.DeletedAt)
	return a, err
}

func createAssignment(ctx context.Context, q pgQuerier, a Assignment) (Assignment, error) {
	row := q.QueryRow(ctx, `
		INSERT INTO role_assignments (id, person_id, role_type, company_id, tenant_id, is_active, is_primary, valid_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING `+assignmentColumns,
		a.ID, a.PersonID, a.RoleType, a.CompanyID, a.TenantID, a.IsActive, a.IsPrimary, a.ValidUntil, a.CreatedAt)
	created, err := scanAssignment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == uniqueActiveScopeConstraint {
			return Assignment{}, ErrRoleExists
		}
		return Assignment{}, fmt.Errorf("roles: create assignment: %w", err)
	}
	return created, nil
}

// Create inserts a new assignment, translating the unique index violation
// into ErrRoleExists.
func (r *PostgresRepository) Create(ctx context.Context, a Assignment) (Assignment, error) {
	return createAssignment(ctx, r.pool, a)
}

// FindActiveByScope returns the active assignment matching the scope
// tuple, or nil when none exists.
func (r *PostgresRepository) FindActiveByScope(ctx context.Context, scope Scope) (*Assignment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+assignmentColumns+` FROM role_assignments
		WHERE person_id = $1 AND role_type = $2 AND company_id = $3 AND tenant_id = $4
		  AND is_active AND `+notDeleted,
		scope.PersonID, scope.RoleType, scope.CompanyID, scope.TenantID)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("roles: find by scope: %w", err)
	}
	return &a, nil
}

// GetByID returns the assignment, or nil when absent or soft-deleted.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM role_assignments WHERE id = $1 AND `+notDeleted, id)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("roles: get by id: %w", err)
	}
	return &a, nil
}

// ListByPerson returns a person's assignments ordered primary first, then
// by creation time ascending.
func (r *PostgresRepository) ListByPerson(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM role_assignments WHERE person_id = $1 AND ` + notDeleted
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY is_primary DESC, created_at ASC`
	rows, err := r.pool.Query(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("roles: list by person: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// DeactivateByScope soft-deactivates all matching active assignments and
// reports how many rows changed. Idempotent.
func (r *PostgresRepository) DeactivateByScope(ctx context.Context, scope Scope, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE role_assignments SET is_active = FALSE, is_primary = FALSE, deactivated_at = $5, updated_at = $5
		WHERE person_id = $1 AND role_type = $2 AND company_id = $3 AND tenant_id = $4
		  AND is_active AND `+notDeleted,
		scope.PersonID, scope.RoleType, scope.CompanyID, scope.TenantID, now)
	if err != nil {
		return 0, fmt.Errorf("roles: deactivate by scope: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetPrimary returns the single active primary assignment, or nil.
func (r *PostgresRepository) GetPrimary(ctx context.Context, personID uuid.UUID) (*Assignment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+assignmentColumns+` FROM role_assignments
		WHERE person_id = $1 AND is_active AND is_primary AND `+notDeleted, personID)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("roles: get primary: %w", err)
	}
	return &a, nil
}

// ListPersonsWithRole is the inverse lookup, ordered by family name.
func (r *PostgresRepository) ListPersonsWithRole(ctx context.Context, roleTypes []string, f ListFilters) ([]PersonWithRole, error) {
	query := `
		SELECT p.id, p.given_name, p.family_name, p.tenant_id, p.company_id, ` + prefixColumns("ra", assignmentColumns) + `
		FROM role_assignments ra
		JOIN persons p ON p.id = ra.person_id AND p.deleted_at IS NULL
		WHERE ra.role_type = ANY($1) AND ra.is_active AND ra.` + notDeleted
	args := []any{roleTypes}
	if f.TenantID != "" {
		args = append(args, f.TenantID)
		query += fmt.Sprintf(" AND ra.tenant_id = $%d", len(args))
	}
	if f.CompanyID != "" {
		args = append(args, f.CompanyID)
		query += fmt.Sprintf(" AND ra.company_id = $%d", len(args))
	}
	query += ` ORDER BY p.family_name ASC, p.given_name ASC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("roles: list persons with role: %w", err)
	}
	defer rows.Close()
	var out []PersonWithRole
	for rows.Next() {
		var pr PersonWithRole
		a := &pr.Assignment
		if err := rows.Scan(&pr.Person.ID, &pr.Person.GivenName, &pr.Person.FamilyName, &pr.Person.TenantID, &pr.Person.CompanyID,
			&a.ID, &a.PersonID, &a.RoleType, &a.CompanyID, &a.TenantID, &a.IsActive, &a.IsPrimary, &a.ValidUntil, &a.CreatedAt, &a.UpdatedAt, &a.DeactivatedAt, &a.DeletedAt); err != nil {
			return nil, fmt.Errorf("roles: scan person with role: %w", err)
		}
		out = append(out, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles: list persons with role: %w", err)
	}
	return out, nil
}

// Update applies a generic patch and stamps updated_at.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, in UpdateInput, now time.Time) (*Assignment, error) {
	sets := []string{"updated_at = $2"}
	args := []any{id, now}
	add := func(clause string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf(clause, len(args)))
	}
	if in.CompanyID != nil {
		add("company_id = $%d", *in.CompanyID)
	}
	if in.TenantID != nil {
		add("tenant_id = $%d", *in.TenantID)
	}
	if in.ClearValidUntil {
		sets = append(sets, "valid_until = NULL")
	} else if in.ValidUntil != nil {
		add("valid_until = $%d", *in.ValidUntil)
	}
	if in.IsPrimary != nil {
		add("is_primary = $%d", *in.IsPrimary)
	}
	query := `UPDATE role_assignments SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 AND ` + notDeleted + ` RETURNING ` + assignmentColumns
	a, err := scanAssignment(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("roles: update: %w", err)
	}
	return &a, nil
}

// DeactivateExpired deactivates every active assignment whose validity
// window has passed. Used by the background expiry sweep.
func (r *PostgresRepository) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE role_assignments SET is_active = FALSE, is_primary = FALSE, deactivated_at = $1, updated_at = $1
		WHERE is_active AND valid_until IS NOT NULL AND valid_until < $1 AND `+notDeleted, asOf)
	if err != nil {
		return 0, fmt.Errorf("roles: deactivate expired: %w", err)
	}
	return tag.RowsAffected(), nil
}

// WithTx runs fn against a transactional repository view.
func (r *PostgresRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

type pgTxRepository struct {
	tx pgx.Tx
}

func (t *pgTxRepository) Create(ctx context.Context, a Assignment) (Assignment, error) {
	return createAssignment(ctx, t.tx, a)
}

func (t *pgTxRepository) Deactivate(ctx context.Context, id uuid.UUID, now time.Time) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE role_assignments SET is_active = FALSE, is_primary = FALSE, deactivated_at = $2, updated_at = $2
		WHERE id = $1 AND is_active AND `+notDeleted, id, now)
	if err != nil {
		return fmt.Errorf("roles: deactivate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (t *pgTxRepository) ClearPrimary(ctx context.Context, personID uuid.UUID, now time.Time) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE role_assignments SET is_primary = FALSE, updated_at = $2
		WHERE person_id = $1 AND is_active AND is_primary AND `+notDeleted, personID, now)
	if err != nil {
		return fmt.Errorf("roles: clear primary: %w", err)
	}
	return nil
}

func (t *pgTxRepository) SetPrimary(ctx context.Context, personID, id uuid.UUID, now time.Time) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE role_assignments SET is_primary = TRUE, updated_at = $3
		WHERE id = $1 AND person_id = $2 AND is_active AND `+notDeleted, id, personID, now)
	if err != nil {
		return fmt.Errorf("roles: set primary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func collectAssignments(rows pgx.Rows) ([]Assignment, error) {
	var out []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("roles: scan assignment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles: iterate assignments: %w", err)
	}
	return out, nil
}

func prefixColumns(prefix, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = prefix + "." + p
	}
	return strings.Join(parts, ", ")
}
