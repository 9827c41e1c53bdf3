package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/careline/complaint-portal/internal/domain"
)

func TestDeadlinePriorityTable(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		priority domain.TicketPriority
		offset   time.Duration
	}{
		{domain.TicketPriorityCritical, 4 * time.Hour},
		{domain.TicketPriorityHigh, 24 * time.Hour},
		{domain.TicketPriorityMedium, 48 * time.Hour},
		{domain.TicketPriorityLow, 72 * time.Hour},
	}
	for _, tc := range cases {
		got := Deadline(ClassTicket, tc.priority, domain.TicketTypeComplaint, now)
		assert.Equal(t, now.Add(tc.offset), got, "priority %s", tc.priority)
	}
}

func TestDeadlineIntakeTable(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(24*time.Hour), Deadline(ClassIntake, domain.TicketPriorityMedium, domain.TicketTypeComplaint, now))
	assert.Equal(t, now.Add(48*time.Hour), Deadline(ClassIntake, domain.TicketPriorityMedium, domain.TicketTypeRequest, now))
	// inquiry has no intake entry; falls to the default
	assert.Equal(t, now.Add(72*time.Hour), Deadline(ClassIntake, domain.TicketPriorityMedium, domain.TicketTypeInquiry, now))
}

func TestDeadlineUnknownValuesFallBack(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(72*time.Hour), Deadline(ClassTicket, domain.TicketPriority("URGENT-ISH"), domain.TicketTypeComplaint, now))
	assert.Equal(t, now.Add(72*time.Hour), Deadline(Class("OTHER"), domain.TicketPriority(""), domain.TicketType(""), now))
}
