package domain

import "time"

// EscalationType enumerates how an escalation was initiated.
type EscalationType string

const (
	EscalationTypeManual    EscalationType = "MANUAL"
	EscalationTypeAutomatic EscalationType = "AUTOMATIC"
	EscalationTypeSLABreach EscalationType = "SLA_BREACH"
)

// UnitProgress enumerates per-unit escalation progress. Each routed unit
// tracks progress independently.
type UnitProgress string

const (
	UnitProgressPending    UnitProgress = "PENDING"
	UnitProgressInProgress UnitProgress = "IN_PROGRESS"
	UnitProgressCompleted  UnitProgress = "COMPLETED"
)

// TicketEscalation records one routing event for a ticket. A ticket may
// accumulate many escalations over its lifetime.
type TicketEscalation struct {
	ID             string
	TicketID       string
	FromUnitID     *string
	ToUnitID       string
	FromUserID     string
	FromRole       Role
	ToRole         Role
	Reason         string
	Notes          *string
	EscalationType EscalationType
	CcUnitIDs      []string
	CreatedAt      time.Time
	ResolvedAt     *time.Time
}

// TicketEscalationUnit is one routed unit's slice of an escalation.
// Exactly one row per escalation is primary; the rest are CC.
type TicketEscalationUnit struct {
	ID           string
	TicketID     string
	EscalationID string
	UnitID       string
	IsPrimary    bool
	IsCc         bool
	Status       UnitProgress
	Notes        *string
	CompletedAt  *time.Time
	CreatedAt    time.Time
}
