package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careline/complaint-portal/internal/domain"
)

// UnitRepository reads organizational units. Units are reference data from
// this core's perspective.
type UnitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Unit, error)
	ListActive(ctx context.Context) ([]domain.Unit, error)
}

type unitRepository struct {
	pool *pgxpool.Pool
}

// NewUnitRepository builds the repository.
func NewUnitRepository(pool *pgxpool.Pool) UnitRepository {
	return &unitRepository{pool: pool}
}

func (r *unitRepository) GetByID(ctx context.Context, id string) (*domain.Unit, error) {
	const query = `
        SELECT id, name, code, is_active, created_at, updated_at
        FROM units WHERE id=$1`
	var unit domain.Unit
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&unit.ID,
		&unit.Name,
		&unit.Code,
		&unit.IsActive,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *unitRepository) ListActive(ctx context.Context) ([]domain.Unit, error) {
	const query = `
        SELECT id, name, code, is_active, created_at, updated_at
        FROM units WHERE is_active = TRUE ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Unit
	for rows.Next() {
		var unit domain.Unit
		if err := rows.Scan(&unit.ID, &unit.Name, &unit.Code, &unit.IsActive, &unit.CreatedAt, &unit.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, unit)
	}
	return result, rows.Err()
}
