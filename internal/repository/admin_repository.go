package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careline/complaint-portal/internal/domain"
)

// AdminRepository handles persistence for admin identities.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	Update(ctx context.Context, admin *domain.Admin) error
	GetByID(ctx context.Context, id string) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	ListActiveByUnit(ctx context.Context, unitID string) ([]domain.Admin, error)
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository instantiates the repository.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

const adminColumns = `id, name, email, password_hash, role, unit_id, active_flag, created_at, updated_at`

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	const query = `
        INSERT INTO admins (name, email, password_hash, role, unit_id, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
		admin.Role,
		admin.UnitID,
		admin.Active,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
}

func (r *adminRepository) Update(ctx context.Context, admin *domain.Admin) error {
	const query = `
        UPDATE admins SET name=$1, email=$2, password_hash=$3, role=$4, unit_id=$5, active_flag=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
		admin.Role,
		admin.UnitID,
		admin.Active,
		admin.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *adminRepository) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *adminRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Admin, error) {
	var admin domain.Admin
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&admin.ID,
		&admin.Name,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Role,
		&admin.UnitID,
		&admin.Active,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) ListActiveByUnit(ctx context.Context, unitID string) ([]domain.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE unit_id=$1 AND active_flag = TRUE`
	rows, err := r.pool.Query(ctx, query, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Admin
	for rows.Next() {
		var admin domain.Admin
		if err := rows.Scan(
			&admin.ID,
			&admin.Name,
			&admin.Email,
			&admin.PasswordHash,
			&admin.Role,
			&admin.UnitID,
			&admin.Active,
			&admin.CreatedAt,
			&admin.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, admin)
	}
	return result, rows.Err()
}
