package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careline/complaint-portal/internal/domain"
)

// ResponseRepository persists admin replies on tickets.
type ResponseRepository interface {
	Create(ctx context.Context, response *domain.TicketResponse) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketResponse, error)
}

type responseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository instantiates the repository.
func NewResponseRepository(pool *pgxpool.Pool) ResponseRepository {
	return &responseRepository{pool: pool}
}

func (r *responseRepository) Create(ctx context.Context, response *domain.TicketResponse) error {
	const query = `
        INSERT INTO ticket_responses (ticket_id, admin_id, message, is_internal)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		response.TicketID,
		response.AdminID,
		response.Message,
		response.IsInternal,
	).Scan(&response.ID, &response.CreatedAt)
}

func (r *responseRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketResponse, error) {
	const query = `
        SELECT id, ticket_id, admin_id, message, is_internal, created_at
        FROM ticket_responses WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketResponse
	for rows.Next() {
		var response domain.TicketResponse
		if err := rows.Scan(
			&response.ID,
			&response.TicketID,
			&response.AdminID,
			&response.Message,
			&response.IsInternal,
			&response.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, response)
	}
	return result, rows.Err()
}
