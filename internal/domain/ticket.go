package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen      TicketStatus = "OPEN"
	TicketStatusEscalated TicketStatus = "ESCALATED"
	TicketStatusResolved  TicketStatus = "RESOLVED"
	TicketStatusClosed    TicketStatus = "CLOSED"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// TicketType enumerates intake categories.
type TicketType string

const (
	TicketTypeComplaint TicketType = "COMPLAINT"
	TicketTypeRequest   TicketType = "REQUEST"
	TicketTypeInquiry   TicketType = "INQUIRY"
)

// Ticket is the aggregate for complaint/request intake.
// UnitID is the owning unit set at creation; escalation adds parallel
// routing and never reassigns ownership.
type Ticket struct {
	ID              string
	TicketNumber    string
	UnitID          string
	CategoryID      *string
	Type            TicketType
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	IsEscalated     bool
	IsFlagged       bool
	FlagReason      *string
	FirstResponseAt *time.Time
	ResolvedAt      *time.Time
	SLADeadline     time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EscalationDirection describes how an escalated ticket relates to a unit.
type EscalationDirection string

const (
	EscalationReceived EscalationDirection = "received"
	EscalationSent     EscalationDirection = "sent"
)

// VisibleTicket is a ticket annotated with escalation provenance for a
// specific viewing unit.
type VisibleTicket struct {
	Ticket
	EscalationRelated bool
	EscalationDate    *time.Time
	Direction         *EscalationDirection
}
