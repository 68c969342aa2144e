package persons

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads person records.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Person, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]Person, error)
}

// PostgresRepository provides pgx backed person reads.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const personColumns = "id, tenant_id, company_id, department_id, given_name, family_name, email, phone, password_hash, reset_token, created_at, updated_at, deleted_at"

func scanPerson(row pgx.Row) (Person, error) {
	var p Person
	err := row.Scan(&p.ID, &p.TenantID, &p.CompanyID, &p.DepartmentID, &p.GivenName, &p.FamilyName, &p.Email, &p.Phone, &p.PasswordHash, &p.ResetToken, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	return p, err
}

// GetByID returns the person, or nil when absent or soft-deleted.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Person, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+personColumns+` FROM persons WHERE id = $1 AND deleted_at IS NULL`, id)
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("persons: get by id: %w", err)
	}
	return &p, nil
}

// ListByTenant returns a page of a tenant's persons ordered by family name.
func (r *PostgresRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]Person, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+personColumns+` FROM persons
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY family_name ASC, given_name ASC
		LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("persons: list by tenant: %w", err)
	}
	defer rows.Close()
	var out []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("persons: scan person: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("persons: list by tenant: %w", err)
	}
	return out, nil
}
