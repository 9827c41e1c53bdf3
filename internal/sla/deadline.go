// Package sla maps ticket class and urgency to response deadlines. The
// tables are explicit data so SLA policy can change without touching the
// surrounding flow.
package sla

import (
	"time"

	"github.com/careline/complaint-portal/internal/domain"
)

// Class selects which deadline table applies.
type Class string

const (
	// ClassTicket covers staff-managed tickets; deadline follows priority.
	ClassTicket Class = "TICKET"
	// ClassIntake covers public intake submissions; deadline follows the
	// intake type.
	ClassIntake Class = "INTAKE"
)

var priorityOffsets = map[domain.TicketPriority]time.Duration{
	domain.TicketPriorityCritical: 4 * time.Hour,
	domain.TicketPriorityHigh:     24 * time.Hour,
	domain.TicketPriorityMedium:   48 * time.Hour,
	domain.TicketPriorityLow:      72 * time.Hour,
}

var intakeOffsets = map[domain.TicketType]time.Duration{
	domain.TicketTypeComplaint: 24 * time.Hour,
	domain.TicketTypeRequest:   48 * time.Hour,
}

const defaultOffset = 72 * time.Hour

// Deadline computes the SLA deadline for a ticket of the given class.
func Deadline(class Class, priority domain.TicketPriority, ticketType domain.TicketType, now time.Time) time.Time {
	switch class {
	case ClassIntake:
		if offset, ok := intakeOffsets[ticketType]; ok {
			return now.Add(offset)
		}
	default:
		if offset, ok := priorityOffsets[priority]; ok {
			return now.Add(offset)
		}
	}
	return now.Add(defaultOffset)
}
