package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careline/complaint-portal/internal/domain"
	apperrors "github.com/careline/complaint-portal/pkg/util/errorutil"
)

type visibilityFixture struct {
	service     *VisibilityService
	tickets     *fakeTicketRepo
	escalations *fakeEscalationRepo
}

func newVisibilityFixture() *visibilityFixture {
	tickets := newFakeTicketRepo()
	escalations := newFakeEscalationRepo()
	return &visibilityFixture{
		service:     NewVisibilityService(tickets, escalations),
		tickets:     tickets,
		escalations: escalations,
	}
}

func (f *visibilityFixture) seedTicket(id, unitID string, createdAt time.Time) domain.Ticket {
	ticket := domain.Ticket{
		ID:           id,
		TicketNumber: "TKT-" + id,
		UnitID:       unitID,
		Type:         domain.TicketTypeComplaint,
		Title:        "ticket " + id,
		Status:       domain.TicketStatusOpen,
		Priority:     domain.TicketPriorityMedium,
		CreatedAt:    createdAt,
	}
	f.tickets.put(ticket)
	return ticket
}

func (f *visibilityFixture) seedEscalation(ticketID, fromUnit, toUnit string, at time.Time) {
	f.escalations.escalations = append(f.escalations.escalations, domain.TicketEscalation{
		ID:        "esc-" + ticketID + "-" + toUnit,
		TicketID:  ticketID,
		FromUnitID: &fromUnit,
		ToUnitID:  toUnit,
		Reason:    "seed",
		CreatedAt: at,
	})
}

func (f *visibilityFixture) seedCcRow(ticketID, unitID string, at time.Time) {
	f.escalations.unitRows = append(f.escalations.unitRows, domain.TicketEscalationUnit{
		ID:        "row-" + ticketID + "-" + unitID,
		TicketID:  ticketID,
		UnitID:    unitID,
		IsCc:      true,
		Status:    domain.UnitProgressPending,
		CreatedAt: at,
	})
}

func scopedPrincipal(unitID string) *domain.Principal {
	return &domain.Principal{ID: "acct-1", Role: domain.RoleOperator, HomeUnitID: &unitID}
}

func globalPrincipal() *domain.Principal {
	return &domain.Principal{ID: "acct-9", Role: domain.RoleDirector}
}

func TestListVisibleRequiresPrincipal(t *testing.T) {
	f := newVisibilityFixture()
	_, err := f.service.ListVisible(context.Background(), nil, VisibilityFilter{})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperrors.CodeUnauthenticated, domainErr.Code)
}

func TestListVisibleOwnedTicketsOnly(t *testing.T) {
	f := newVisibilityFixture()
	now := time.Now()
	f.seedTicket("t1", "unit-a", now)
	f.seedTicket("t2", "unit-b", now)

	visible, err := f.service.ListVisible(context.Background(), scopedPrincipal("unit-a"), VisibilityFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "t1", visible[0].ID)
	assert.False(t, visible[0].EscalationRelated)
}

func TestListVisibleIncludesReceivedEscalations(t *testing.T) {
	f := newVisibilityFixture()
	now := time.Now()
	f.seedTicket("t1", "unit-a", now)
	f.seedEscalation("t1", "unit-a", "unit-b", now)

	visible, err := f.service.ListVisible(context.Background(), scopedPrincipal("unit-b"), VisibilityFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	entry := visible[0]
	assert.Equal(t, "t1", entry.ID)
	assert.True(t, entry.EscalationRelated)
	require.NotNil(t, entry.Direction)
	assert.Equal(t, domain.EscalationReceived, *entry.Direction)
	require.NotNil(t, entry.EscalationDate)
}

func TestListVisibleAnnotatesSentEscalations(t *testing.T) {
	f := newVisibilityFixture()
	now := time.Now()
	f.seedTicket("t1", "unit-a", now)
	f.seedEscalation("t1", "unit-a", "unit-b", now)

	visible, err := f.service.ListVisible(context.Background(), scopedPrincipal("unit-a"), VisibilityFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	entry := visible[0]
	assert.True(t, entry.EscalationRelated, "sender keeps visibility after escalating away")
	require.NotNil(t, entry.Direction)
	assert.Equal(t, domain.EscalationSent, *entry.Direction)
}

func TestListVisibleCcParity(t *testing.T) {
	f := newVisibilityFixture()
	now := time.Now()
	f.seedTicket("t1", "unit-a", now)
	f.seedEscalation("t1", "unit-a", "unit-b", now)
	f.seedCcRow("t1", "unit-c", now)

	visible, err := f.service.ListVisible(context.Background(), scopedPrincipal("unit-c"), VisibilityFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1, "CC-routed units see the ticket")
	require.NotNil(t, visible[0].Direction)
	assert.Equal(t, domain.EscalationReceived, *visible[0].Direction)
}

func TestListVisibleNoCrossUnitLeakage(t *testing.T) {
	f := newVisibilityFixture()
	now := time.Now()
	f.seedTicket("t1", "unit-a", now)
	f.seedTicket("t2", "unit-b", now)
	f.seedEscalation("t1", "unit-a", "unit-b", now)

	visible, err := f.service.ListVisible(context.Background(), scopedPrincipal("unit-d"), VisibilityFilter{})
	require.NoError(t, err)
	assert.Empty(t, visible, "a unit with no ownership or escalation relation sees nothing")
}

func TestListVisibleDedupesTicketIDs(t *testing.T) {
	f := newVisibilityFixture()
	now := time.Now()
	// owned by unit-a and also both sent and received across two escalations
	f.seedTicket("t1", "unit-a", now)
	f.seedEscalation("t1", "unit-a", "unit-b", now.Add(-time.Hour))
	f.seedEscalation("t1", "unit-b", "unit-a", now)

	visible, err := f.service.ListVisible(context.Background(), scopedPrincipal("unit-a"), VisibilityFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1, "each ticket id appears once")
	// the most recent escalation wins the annotation
	require.NotNil(t, visible[0].Direction)
	assert.Equal(t, domain.EscalationReceived, *visible[0].Direction)
}

func TestListVisibleOwnershipSurvivesEscalation(t *testing.T) {
	f := newVisibilityFixture()
	now := time.Now()
	f.seedTicket("t1", "unit-a", now)
	f.seedEscalation("t1", "unit-a", "unit-b", now)

	// escalating away never removes tickets from the owner's view
	visible, err := f.service.ListVisible(context.Background(), scopedPrincipal("unit-a"), VisibilityFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "t1", visible[0].ID)
}

func TestListVisibleGlobalSeesEverything(t *testing.T) {
	f := newVisibilityFixture()
	now := time.Now()
	f.seedTicket("t1", "unit-a", now)
	f.seedTicket("t2", "unit-b", now.Add(-time.Minute))
	f.seedTicket("t3", "unit-c", now.Add(-2*time.Minute))

	visible, err := f.service.ListVisible(context.Background(), globalPrincipal(), VisibilityFilter{})
	require.NoError(t, err)
	assert.Len(t, visible, 3)
}

func TestListVisibleGlobalNarrowedToUnit(t *testing.T) {
	f := newVisibilityFixture()
	now := time.Now()
	f.seedTicket("t1", "unit-a", now)
	f.seedTicket("t2", "unit-b", now)

	unitB := "unit-b"
	visible, err := f.service.ListVisible(context.Background(), globalPrincipal(), VisibilityFilter{UnitID: &unitB})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "t2", visible[0].ID)
}

func TestListVisibleUnassignedPrincipalForbidden(t *testing.T) {
	f := newVisibilityFixture()
	principal := &domain.Principal{ID: "acct-1", Role: domain.RoleOperator}
	_, err := f.service.ListVisible(context.Background(), principal, VisibilityFilter{})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperrors.CodeForbidden, domainErr.Code)
}

func TestListVisibleFiltersApplyAfterVisibility(t *testing.T) {
	f := newVisibilityFixture()
	now := time.Now()

	owned := f.seedTicket("t1", "unit-a", now)
	owned.Status = domain.TicketStatusResolved
	f.tickets.put(owned)

	received := f.seedTicket("t2", "unit-b", now.Add(-time.Minute))
	received.Status = domain.TicketStatusEscalated
	f.tickets.put(received)
	f.seedEscalation("t2", "unit-b", "unit-a", now)

	// status filter narrows the visible set
	visible, err := f.service.ListVisible(context.Background(), scopedPrincipal("unit-a"), VisibilityFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusEscalated},
	})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "t2", visible[0].ID)

	// a unit filter naming a foreign unit cannot widen visibility for a
	// scoped principal: the branch ignores it entirely
	unitB := "unit-b"
	visible, err = f.service.ListVisible(context.Background(), scopedPrincipal("unit-d"), VisibilityFilter{UnitID: &unitB})
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestListVisibleSearchFilter(t *testing.T) {
	f := newVisibilityFixture()
	now := time.Now()
	t1 := f.seedTicket("t1", "unit-a", now)
	t1.Title = "Broken wheelchair in ward 3"
	f.tickets.put(t1)
	t2 := f.seedTicket("t2", "unit-a", now.Add(-time.Minute))
	t2.Description = "wheelchair missing entirely"
	f.tickets.put(t2)
	f.seedTicket("t3", "unit-a", now.Add(-2*time.Minute))

	term := "WheelChair"
	visible, err := f.service.ListVisible(context.Background(), scopedPrincipal("unit-a"), VisibilityFilter{Search: &term})
	require.NoError(t, err)
	assert.Len(t, visible, 2, "search is case-insensitive over number, title, and description")
}

func TestListVisibleDateRangeFilter(t *testing.T) {
	f := newVisibilityFixture()
	now := time.Now()
	f.seedTicket("t1", "unit-a", now.Add(-48*time.Hour))
	f.seedTicket("t2", "unit-a", now.Add(-24*time.Hour))
	f.seedTicket("t3", "unit-a", now)

	from := now.Add(-36 * time.Hour)
	to := now.Add(-time.Hour)
	visible, err := f.service.ListVisible(context.Background(), scopedPrincipal("unit-a"), VisibilityFilter{
		DateFrom: &from,
		DateTo:   &to,
	})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "t2", visible[0].ID)
}

func TestListVisibleOrderAndLimit(t *testing.T) {
	f := newVisibilityFixture()
	now := time.Now()
	f.seedTicket("t1", "unit-a", now.Add(-2*time.Hour))
	f.seedTicket("t2", "unit-a", now.Add(-time.Hour))
	f.seedTicket("t3", "unit-a", now)

	visible, err := f.service.ListVisible(context.Background(), scopedPrincipal("unit-a"), VisibilityFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, "t3", visible[0].ID)
	assert.Equal(t, "t2", visible[1].ID)
}
