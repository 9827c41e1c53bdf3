package dto

import (
	"time"

	"github.com/careline/complaint-portal/internal/domain"
)

// EscalateRequest payload.
type EscalateRequest struct {
	ToUnitID  string                 `json:"to_unit_id"`
	CcUnitIDs []string               `json:"cc_unit_ids"`
	Reason    string                 `json:"reason"`
	Notes     *string                `json:"notes"`
	Priority  *domain.TicketPriority `json:"priority"`
}

// EscalationResponse represents one escalation header.
type EscalationResponse struct {
	ID             string                `json:"id"`
	TicketID       string                `json:"ticket_id"`
	FromUnitID     *string               `json:"from_unit_id,omitempty"`
	ToUnitID       string                `json:"to_unit_id"`
	FromUserID     string                `json:"from_user_id"`
	FromRole       domain.Role           `json:"from_role"`
	ToRole         domain.Role           `json:"to_role"`
	Reason         string                `json:"reason"`
	Notes          *string               `json:"notes,omitempty"`
	EscalationType domain.EscalationType `json:"escalation_type"`
	CcUnitIDs      []string              `json:"cc_unit_ids,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	ResolvedAt     *time.Time            `json:"resolved_at,omitempty"`
}

// EscalationUnitResponse represents one per-unit routing row.
type EscalationUnitResponse struct {
	ID           string              `json:"id"`
	TicketID     string              `json:"ticket_id"`
	EscalationID string              `json:"escalation_id"`
	UnitID       string              `json:"unit_id"`
	IsPrimary    bool                `json:"is_primary"`
	IsCc         bool                `json:"is_cc"`
	Status       domain.UnitProgress `json:"status"`
	Notes        *string             `json:"notes,omitempty"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// EscalateResponse is the escalation outcome, warnings included.
type EscalateResponse struct {
	Escalation    EscalationResponse       `json:"escalation"`
	Units         []EscalationUnitResponse `json:"units"`
	NotifiedCount int                      `json:"notified_count"`
	Warnings      []string                 `json:"warnings,omitempty"`
}

// UpdateUnitStatusRequest payload.
type UpdateUnitStatusRequest struct {
	Status domain.UnitProgress `json:"status"`
	Notes  *string             `json:"notes"`
}
