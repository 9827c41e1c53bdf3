package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careline/complaint-portal/internal/domain"
)

// EscalationRepository manages escalation headers and per-unit routing rows.
// Per-unit rows are append-only apart from explicit status progression; they
// are never deleted.
type EscalationRepository interface {
	CreateEscalation(ctx context.Context, esc *domain.TicketEscalation) error
	CreateEscalationUnit(ctx context.Context, row *domain.TicketEscalationUnit) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEscalation, error)
	ListUnitsByTicket(ctx context.Context, ticketID string) ([]domain.TicketEscalationUnit, error)
	ListReceivedByUnit(ctx context.Context, unitID string) ([]domain.TicketEscalation, error)
	ListSentByUnit(ctx context.Context, unitID string) ([]domain.TicketEscalation, error)
	ListUnitRowsForUnit(ctx context.Context, unitID string) ([]domain.TicketEscalationUnit, error)
	GetUnitRow(ctx context.Context, id string) (*domain.TicketEscalationUnit, error)
	UpdateUnitRow(ctx context.Context, row *domain.TicketEscalationUnit) error
	HasUnitRelation(ctx context.Context, ticketID, unitID string) (bool, error)
}

type escalationRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRepository instantiates the repository.
func NewEscalationRepository(pool *pgxpool.Pool) EscalationRepository {
	return &escalationRepository{pool: pool}
}

const escalationColumns = `id, ticket_id, from_unit_id, to_unit_id, from_user_id, from_role, to_role,
               reason, notes, escalation_type, cc_unit_ids, created_at, resolved_at`

const escalationUnitColumns = `id, ticket_id, escalation_id, unit_id, is_primary, is_cc,
               status, notes, completed_at, created_at`

func (r *escalationRepository) CreateEscalation(ctx context.Context, esc *domain.TicketEscalation) error {
	const query = `
        INSERT INTO ticket_escalations (ticket_id, from_unit_id, to_unit_id, from_user_id, from_role,
                                        to_role, reason, notes, escalation_type, cc_unit_ids)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		esc.TicketID,
		esc.FromUnitID,
		esc.ToUnitID,
		esc.FromUserID,
		esc.FromRole,
		esc.ToRole,
		esc.Reason,
		esc.Notes,
		esc.EscalationType,
		esc.CcUnitIDs,
	).Scan(&esc.ID, &esc.CreatedAt)
}

func (r *escalationRepository) CreateEscalationUnit(ctx context.Context, row *domain.TicketEscalationUnit) error {
	const query = `
        INSERT INTO ticket_escalation_units (ticket_id, escalation_id, unit_id, is_primary, is_cc, status, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		row.TicketID,
		row.EscalationID,
		row.UnitID,
		row.IsPrimary,
		row.IsCc,
		row.Status,
		row.Notes,
	).Scan(&row.ID, &row.CreatedAt)
}

func (r *escalationRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEscalation, error) {
	query := `SELECT ` + escalationColumns + ` FROM ticket_escalations WHERE ticket_id=$1 ORDER BY created_at DESC`
	return r.queryEscalations(ctx, query, ticketID)
}

func (r *escalationRepository) ListReceivedByUnit(ctx context.Context, unitID string) ([]domain.TicketEscalation, error) {
	query := `SELECT ` + escalationColumns + ` FROM ticket_escalations WHERE to_unit_id=$1 ORDER BY created_at DESC`
	return r.queryEscalations(ctx, query, unitID)
}

func (r *escalationRepository) ListSentByUnit(ctx context.Context, unitID string) ([]domain.TicketEscalation, error) {
	query := `SELECT ` + escalationColumns + ` FROM ticket_escalations WHERE from_unit_id=$1 ORDER BY created_at DESC`
	return r.queryEscalations(ctx, query, unitID)
}

func (r *escalationRepository) queryEscalations(ctx context.Context, query string, arg any) ([]domain.TicketEscalation, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketEscalation
	for rows.Next() {
		var esc domain.TicketEscalation
		if err := rows.Scan(
			&esc.ID,
			&esc.TicketID,
			&esc.FromUnitID,
			&esc.ToUnitID,
			&esc.FromUserID,
			&esc.FromRole,
			&esc.ToRole,
			&esc.Reason,
			&esc.Notes,
			&esc.EscalationType,
			&esc.CcUnitIDs,
			&esc.CreatedAt,
			&esc.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, esc)
	}
	return result, rows.Err()
}

func (r *escalationRepository) ListUnitsByTicket(ctx context.Context, ticketID string) ([]domain.TicketEscalationUnit, error) {
	query := `SELECT ` + escalationUnitColumns + ` FROM ticket_escalation_units WHERE ticket_id=$1 ORDER BY created_at ASC`
	return r.queryUnitRows(ctx, query, ticketID)
}

func (r *escalationRepository) ListUnitRowsForUnit(ctx context.Context, unitID string) ([]domain.TicketEscalationUnit, error) {
	query := `SELECT ` + escalationUnitColumns + ` FROM ticket_escalation_units WHERE unit_id=$1 ORDER BY created_at DESC`
	return r.queryUnitRows(ctx, query, unitID)
}

func (r *escalationRepository) queryUnitRows(ctx context.Context, query string, arg any) ([]domain.TicketEscalationUnit, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketEscalationUnit
	for rows.Next() {
		var row domain.TicketEscalationUnit
		if err := rows.Scan(
			&row.ID,
			&row.TicketID,
			&row.EscalationID,
			&row.UnitID,
			&row.IsPrimary,
			&row.IsCc,
			&row.Status,
			&row.Notes,
			&row.CompletedAt,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *escalationRepository) GetUnitRow(ctx context.Context, id string) (*domain.TicketEscalationUnit, error) {
	query := `SELECT ` + escalationUnitColumns + ` FROM ticket_escalation_units WHERE id=$1`
	var row domain.TicketEscalationUnit
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&row.ID,
		&row.TicketID,
		&row.EscalationID,
		&row.UnitID,
		&row.IsPrimary,
		&row.IsCc,
		&row.Status,
		&row.Notes,
		&row.CompletedAt,
		&row.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *escalationRepository) UpdateUnitRow(ctx context.Context, row *domain.TicketEscalationUnit) error {
	const query = `
        UPDATE ticket_escalation_units SET status=$1, notes=$2, completed_at=$3
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		row.Status,
		row.Notes,
		row.CompletedAt,
		row.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// HasUnitRelation reports whether the unit is a party to any escalation on
// the ticket, either on the header (from/to) or as a routed CC unit.
func (r *escalationRepository) HasUnitRelation(ctx context.Context, ticketID, unitID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM ticket_escalations
            WHERE ticket_id=$1 AND (to_unit_id=$2 OR from_unit_id=$2)
        ) OR EXISTS (
            SELECT 1 FROM ticket_escalation_units
            WHERE ticket_id=$1 AND unit_id=$2
        )`
	var related bool
	if err := r.pool.QueryRow(ctx, query, ticketID, unitID).Scan(&related); err != nil {
		return false, err
	}
	return related, nil
}
