package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/careline/complaint-portal/internal/domain"
	"github.com/careline/complaint-portal/internal/repository"
	apperrors "github.com/careline/complaint-portal/pkg/util/errorutil"
)

// VisibilityService computes the set of tickets a principal may see.
// Global-access roles see everything (optionally narrowed to one unit);
// unit-scoped principals see tickets their unit owns plus tickets their
// unit sent or received through escalation, CC routing included.
type VisibilityService struct {
	tickets     repository.TicketRepository
	escalations repository.EscalationRepository
}

// NewVisibilityService constructs the service.
func NewVisibilityService(tickets repository.TicketRepository, escalations repository.EscalationRepository) *VisibilityService {
	return &VisibilityService{tickets: tickets, escalations: escalations}
}

// VisibilityFilter narrows an already-visible result set. Filters are
// applied only after visibility is established and never widen it.
type VisibilityFilter struct {
	UnitID     *string
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	CategoryID *string
	Types      []domain.TicketType
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     *string
	Limit      int
}

// ListVisible returns the tickets visible to the principal, annotated with
// escalation provenance, most recent first.
func (s *VisibilityService) ListVisible(ctx context.Context, principal *domain.Principal, filter VisibilityFilter) ([]domain.VisibleTicket, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthenticated("missing principal")
	}

	var visible []domain.VisibleTicket
	var err error
	if principal.Role.HasGlobalAccess() {
		visible, err = s.listGlobal(ctx, filter.UnitID)
	} else {
		visible, err = s.listUnitScoped(ctx, principal.HomeUnit())
	}
	if err != nil {
		return nil, err
	}

	visible = applyFilter(visible, filter)
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	// limit truncates last, after all filtering and ordering
	if filter.Limit > 0 && len(visible) > filter.Limit {
		visible = visible[:filter.Limit]
	}
	return visible, nil
}

func (s *VisibilityService) listGlobal(ctx context.Context, unitID *string) ([]domain.VisibleTicket, error) {
	var tickets []domain.Ticket
	var err error
	if unitID != nil && *unitID != "" {
		tickets, err = s.tickets.ListByUnit(ctx, *unitID)
	} else {
		tickets, err = s.tickets.ListAll(ctx)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	result := make([]domain.VisibleTicket, 0, len(tickets))
	for _, ticket := range tickets {
		result = append(result, domain.VisibleTicket{Ticket: ticket, EscalationRelated: ticket.IsEscalated})
	}
	return result, nil
}

// escalationMark tracks the most recent escalation touching a ticket from
// the viewing unit's perspective.
type escalationMark struct {
	date      time.Time
	direction domain.EscalationDirection
}

func (s *VisibilityService) listUnitScoped(ctx context.Context, homeUnitID string) ([]domain.VisibleTicket, error) {
	if homeUnitID == "" {
		return nil, apperrors.NewForbidden("your account is not assigned to a unit")
	}

	owned, err := s.tickets.ListByUnit(ctx, homeUnitID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	marks := map[string]escalationMark{}
	record := func(ticketID string, at time.Time, direction domain.EscalationDirection) {
		current, seen := marks[ticketID]
		if !seen || at.After(current.date) {
			marks[ticketID] = escalationMark{date: at, direction: direction}
		}
	}

	received, err := s.escalations.ListReceivedByUnit(ctx, homeUnitID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, esc := range received {
		record(esc.TicketID, esc.CreatedAt, domain.EscalationReceived)
	}

	sent, err := s.escalations.ListSentByUnit(ctx, homeUnitID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, esc := range sent {
		record(esc.TicketID, esc.CreatedAt, domain.EscalationSent)
	}

	// CC parity: tickets routed to this unit as CC are visible even though
	// the escalation header names another unit as receiver.
	ccRows, err := s.escalations.ListUnitRowsForUnit(ctx, homeUnitID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, row := range ccRows {
		record(row.TicketID, row.CreatedAt, domain.EscalationReceived)
	}

	ownedIDs := make(map[string]struct{}, len(owned))
	for _, ticket := range owned {
		ownedIDs[ticket.ID] = struct{}{}
	}
	var missing []string
	for ticketID := range marks {
		if _, ok := ownedIDs[ticketID]; !ok {
			missing = append(missing, ticketID)
		}
	}
	sort.Strings(missing)

	escalated, err := s.tickets.ListByIDs(ctx, missing)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	// directly-owned tickets always survive the merge; escalation relations
	// only add entries, each ticket id appearing once
	result := make([]domain.VisibleTicket, 0, len(owned)+len(escalated))
	for _, ticket := range append(owned, escalated...) {
		entry := domain.VisibleTicket{Ticket: ticket}
		if mark, ok := marks[ticket.ID]; ok {
			date := mark.date
			direction := mark.direction
			entry.EscalationRelated = true
			entry.EscalationDate = &date
			entry.Direction = &direction
		}
		result = append(result, entry)
	}
	return result, nil
}

func applyFilter(tickets []domain.VisibleTicket, filter VisibilityFilter) []domain.VisibleTicket {
	result := make([]domain.VisibleTicket, 0, len(tickets))
	for _, ticket := range tickets {
		if !matchesFilter(&ticket, filter) {
			continue
		}
		result = append(result, ticket)
	}
	return result
}

func matchesFilter(ticket *domain.VisibleTicket, filter VisibilityFilter) bool {
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
		return false
	}
	if filter.CategoryID != nil {
		if ticket.CategoryID == nil || *ticket.CategoryID != *filter.CategoryID {
			return false
		}
	}
	if len(filter.Types) > 0 && !containsType(filter.Types, ticket.Type) {
		return false
	}
	if filter.DateFrom != nil && ticket.CreatedAt.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && ticket.CreatedAt.After(*filter.DateTo) {
		return false
	}
	if filter.Search != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.Search))
		if term != "" && !matchesSearch(ticket, term) {
			return false
		}
	}
	return true
}

func matchesSearch(ticket *domain.VisibleTicket, term string) bool {
	return strings.Contains(strings.ToLower(ticket.TicketNumber), term) ||
		strings.Contains(strings.ToLower(ticket.Title), term) ||
		strings.Contains(strings.ToLower(ticket.Description), term)
}

func containsStatus(haystack []domain.TicketStatus, needle domain.TicketStatus) bool {
	for _, status := range haystack {
		if status == needle {
			return true
		}
	}
	return false
}

func containsPriority(haystack []domain.TicketPriority, needle domain.TicketPriority) bool {
	for _, priority := range haystack {
		if priority == needle {
			return true
		}
	}
	return false
}

func containsType(haystack []domain.TicketType, needle domain.TicketType) bool {
	for _, ticketType := range haystack {
		if ticketType == needle {
			return true
		}
	}
	return false
}
