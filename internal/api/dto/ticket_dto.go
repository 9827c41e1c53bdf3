package dto

import (
	"time"

	"github.com/careline/complaint-portal/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	UnitID      string                `json:"unit_id"`
	CategoryID  *string               `json:"category_id"`
	Type        domain.TicketType     `json:"type"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// TicketSummary is one visible ticket with escalation provenance.
type TicketSummary struct {
	ID              string                      `json:"id"`
	TicketNumber    string                      `json:"ticket_number"`
	UnitID          string                      `json:"unit_id"`
	CategoryID      *string                     `json:"category_id,omitempty"`
	Type            domain.TicketType           `json:"type"`
	Title           string                      `json:"title"`
	Status          domain.TicketStatus         `json:"status"`
	Priority        domain.TicketPriority       `json:"priority"`
	IsEscalated     bool                        `json:"is_escalated"`
	IsFlagged       bool                        `json:"is_flagged"`
	SLADeadline     time.Time                   `json:"sla_deadline"`
	CreatedAt       time.Time                   `json:"created_at"`
	EscalationDate  *time.Time                  `json:"escalation_date,omitempty"`
	EscalationType  *domain.EscalationDirection `json:"escalation_type,omitempty"`
	FirstResponseAt *time.Time                  `json:"first_response_at,omitempty"`
	ResolvedAt      *time.Time                  `json:"resolved_at,omitempty"`
}

// RespondRequest payload.
type RespondRequest struct {
	Message      string `json:"message"`
	IsInternal   bool   `json:"is_internal"`
	MarkResolved bool   `json:"mark_resolved"`
}

// FlagRequest payload.
type FlagRequest struct {
	IsFlagged  bool    `json:"is_flagged"`
	FlagReason *string `json:"flag_reason"`
}

// TicketResponseEntry represents one reply on the ticket thread.
type TicketResponseEntry struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	AdminID    string    `json:"admin_id"`
	Message    string    `json:"message"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// UnitResponse represents an organizational unit.
type UnitResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}
