package events

import (
	"time"

	"github.com/careline/complaint-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketEscalated       EventType = "ticket_escalated"
	EventEscalationUnitUpdated EventType = "escalation_unit_updated"
	EventTicketResponded       EventType = "ticket_responded"
	EventTicketFlagged         EventType = "ticket_flagged"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	AccountID string  `json:"account_id"`
	AdminID   *string `json:"admin_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	UnitID      string                `json:"unit_id"`
	Type        domain.TicketType     `json:"ticket_type"`
	Priority    domain.TicketPriority `json:"priority"`
	Title       string                `json:"title"`
	SLADeadline time.Time             `json:"sla_deadline"`
}

// TicketEscalatedPayload carries the routing result and the computed
// notification fan-out for delivery.
type TicketEscalatedPayload struct {
	EscalationID  string                `json:"escalation_id"`
	FromUnitID    *string               `json:"from_unit_id,omitempty"`
	ToUnitID      string                `json:"to_unit_id"`
	CcUnitIDs     []string              `json:"cc_unit_ids,omitempty"`
	Reason        string                `json:"reason"`
	Priority      domain.TicketPriority `json:"priority"`
	Notifications []domain.Notification `json:"notifications"`
}

// EscalationUnitUpdatedPayload payload.
type EscalationUnitUpdatedPayload struct {
	EscalationUnitID string              `json:"escalation_unit_id"`
	UnitID           string              `json:"unit_id"`
	OldStatus        domain.UnitProgress `json:"old_status"`
	NewStatus        domain.UnitProgress `json:"new_status"`
}

// TicketRespondedPayload payload.
type TicketRespondedPayload struct {
	ResponseID   string `json:"response_id"`
	AdminID      string `json:"admin_id"`
	IsInternal   bool   `json:"is_internal"`
	MarkResolved bool   `json:"mark_resolved"`
}

// TicketFlaggedPayload payload.
type TicketFlaggedPayload struct {
	IsFlagged  bool    `json:"is_flagged"`
	FlagReason *string `json:"flag_reason,omitempty"`
}
