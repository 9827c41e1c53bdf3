package domain

import "time"

// TicketResponse is one admin reply on a ticket. Internal notes are not
// shown to the reporter.
type TicketResponse struct {
	ID         string
	TicketID   string
	AdminID    string
	Message    string
	IsInternal bool
	CreatedAt  time.Time
}
