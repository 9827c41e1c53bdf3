package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careline/complaint-portal/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Listing methods are
// deliberately scoped by visibility source (owning unit, explicit id set)
// so callers cannot widen access through query parameters.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	ListByUnit(ctx context.Context, unitID string) ([]domain.Ticket, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, unit_id, category_id, ticket_type, title, description,
               status, priority, is_escalated, is_flagged, flag_reason,
               first_response_at, resolved_at, sla_deadline, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, unit_id, category_id, ticket_type, title, description,
                             status, priority, is_escalated, sla_deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.UnitID,
		ticket.CategoryID,
		ticket.Type,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.IsEscalated,
		ticket.SLADeadline,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, priority=$2, is_escalated=$3, is_flagged=$4, flag_reason=$5,
            first_response_at=$6, resolved_at=$7, sla_deadline=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.Priority,
		ticket.IsEscalated,
		ticket.IsFlagged,
		ticket.FlagReason,
		ticket.FirstResponseAt,
		ticket.ResolvedAt,
		ticket.SLADeadline,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_number=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets ORDER BY created_at DESC`, ticketColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByUnit(ctx context.Context, unitID string) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE unit_id=$1 ORDER BY created_at DESC`, ticketColumns)
	rows, err := r.pool.Query(ctx, query, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id IN (%s) ORDER BY created_at DESC`,
		ticketColumns, strings.Join(placeholders, ","))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

type ticketScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row ticketScanner, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.UnitID,
		&ticket.CategoryID,
		&ticket.Type,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.IsEscalated,
		&ticket.IsFlagged,
		&ticket.FlagReason,
		&ticket.FirstResponseAt,
		&ticket.ResolvedAt,
		&ticket.SLADeadline,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
