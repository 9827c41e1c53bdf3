package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/careline/complaint-portal/internal/domain"
	"github.com/careline/complaint-portal/internal/events"
	"github.com/careline/complaint-portal/internal/identity"
	"github.com/careline/complaint-portal/internal/policy"
	"github.com/careline/complaint-portal/internal/repository"
	"github.com/careline/complaint-portal/internal/sla"
	apperrors "github.com/careline/complaint-portal/pkg/util/errorutil"
)

// EscalationService routes tickets across unit boundaries: it creates the
// escalation record, materializes per-unit routing rows, flips the ticket's
// status, and computes the notification fan-out.
type EscalationService struct {
	tickets     repository.TicketRepository
	escalations repository.EscalationRepository
	admins      repository.AdminRepository
	units       repository.UnitRepository
	policy      *policy.Engine
	bridge      *identity.AdminBridge
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// EscalationDependencies bundles collaborators for the service.
type EscalationDependencies struct {
	TicketRepo     repository.TicketRepository
	EscalationRepo repository.EscalationRepository
	AdminRepo      repository.AdminRepository
	UnitRepo       repository.UnitRepository
	Policy         *policy.Engine
	Bridge         *identity.AdminBridge
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewEscalationService constructs the service.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	return &EscalationService{
		tickets:     deps.TicketRepo,
		escalations: deps.EscalationRepo,
		admins:      deps.AdminRepo,
		units:       deps.UnitRepo,
		policy:      deps.Policy,
		bridge:      deps.Bridge,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
}

// EscalateInput describes an escalation request.
type EscalateInput struct {
	ToUnitID         string
	CcUnitIDs        []string
	Reason           string
	Notes            *string
	PriorityOverride *domain.TicketPriority
}

// EscalationResult is the outcome of an escalation. Warnings list secondary
// effects that failed after the escalation record was written; the primary
// effect succeeded whenever a result is returned.
type EscalationResult struct {
	Escalation    *domain.TicketEscalation
	Units         []domain.TicketEscalationUnit
	Notifications []domain.Notification
	Warnings      []string
}

// Escalate routes a ticket to a receiving unit with optional CC units.
// Validation and authorization happen before any store mutation. The
// escalation header plus its primary unit row form the write-of-record;
// CC rows, fan-out computation, and the ticket status flip degrade to
// warnings rather than rolling the record back.
func (s *EscalationService) Escalate(ctx context.Context, principal *domain.Principal, ticketID string, input EscalateInput) (*EscalationResult, error) {
	if strings.TrimSpace(input.ToUnitID) == "" {
		return nil, apperrors.NewValidationError("to_unit_id", "receiving unit is required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperrors.NewValidationError("reason", "escalation reason is required")
	}
	ccUnitIDs := dedupeCcUnits(input.CcUnitIDs, input.ToUnitID)

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanWrite(ctx, principal, ticket); err != nil {
		return nil, err
	}
	admin, err := s.bridge.ResolveActingAdmin(ctx, principal)
	if err != nil {
		return nil, err
	}

	toUnit, err := s.units.GetByID(ctx, input.ToUnitID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("to_unit_id", "receiving unit does not exist")
		}
		return nil, apperrors.MapError(err)
	}
	if !toUnit.IsActive {
		return nil, apperrors.NewValidationError("to_unit_id", "receiving unit is inactive")
	}

	escalation := &domain.TicketEscalation{
		TicketID:       ticket.ID,
		FromUnitID:     principal.HomeUnitID,
		ToUnitID:       input.ToUnitID,
		FromUserID:     principal.ID,
		FromRole:       principal.Role,
		ToRole:         domain.RoleOperator,
		Reason:         strings.TrimSpace(input.Reason),
		Notes:          input.Notes,
		EscalationType: domain.EscalationTypeManual,
		CcUnitIDs:      ccUnitIDs,
	}
	if err := s.escalations.CreateEscalation(ctx, escalation); err != nil {
		return nil, apperrors.MapError(err)
	}

	primary := domain.TicketEscalationUnit{
		TicketID:     ticket.ID,
		EscalationID: escalation.ID,
		UnitID:       input.ToUnitID,
		IsPrimary:    true,
		Status:       domain.UnitProgressPending,
	}
	if err := s.escalations.CreateEscalationUnit(ctx, &primary); err != nil {
		return nil, apperrors.MapError(err)
	}

	result := &EscalationResult{
		Escalation: escalation,
		Units:      []domain.TicketEscalationUnit{primary},
	}

	for _, ccUnitID := range ccUnitIDs {
		row := domain.TicketEscalationUnit{
			TicketID:     ticket.ID,
			EscalationID: escalation.ID,
			UnitID:       ccUnitID,
			IsCc:         true,
			Status:       domain.UnitProgressPending,
		}
		if err := s.escalations.CreateEscalationUnit(ctx, &row); err != nil {
			s.logger.Warn("cc routing row not created",
				zap.String("escalation_id", escalation.ID),
				zap.String("unit_id", ccUnitID),
				zap.Error(err))
			result.Warnings = append(result.Warnings, fmt.Sprintf("cc unit %s was not routed", ccUnitID))
			continue
		}
		result.Units = append(result.Units, row)
	}

	notifications, err := s.computeFanOut(ctx, escalation, ticket)
	if err != nil {
		s.logger.Warn("notification fan-out failed",
			zap.String("escalation_id", escalation.ID),
			zap.Error(err))
		result.Warnings = append(result.Warnings, "notification fan-out could not be computed")
	}
	result.Notifications = notifications

	ticket.Status = domain.TicketStatusEscalated
	ticket.IsEscalated = true
	if input.PriorityOverride != nil {
		ticket.Priority = *input.PriorityOverride
		ticket.SLADeadline = sla.Deadline(sla.ClassTicket, ticket.Priority, ticket.Type, time.Now())
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		// the escalation records stand; status is repaired by
		// ReconcileTicketStatus rather than rolled back here
		s.logger.Warn("ticket status not updated after escalation",
			zap.String("ticket_id", ticket.ID),
			zap.String("escalation_id", escalation.ID),
			zap.Error(err))
		result.Warnings = append(result.Warnings, "ticket status is stale relative to its escalation records")
	}

	s.publish(events.Event{
		Type:     events.EventTicketEscalated,
		TicketID: ticket.ID,
		Actor:    events.Actor{AccountID: principal.ID, AdminID: &admin.ID},
		Payload: events.TicketEscalatedPayload{
			EscalationID:  escalation.ID,
			FromUnitID:    escalation.FromUnitID,
			ToUnitID:      escalation.ToUnitID,
			CcUnitIDs:     escalation.CcUnitIDs,
			Reason:        escalation.Reason,
			Priority:      ticket.Priority,
			Notifications: notifications,
		},
	})
	return result, nil
}

// computeFanOut targets every active admin of the receiving unit. CC units
// are routed for visibility, not notified.
func (s *EscalationService) computeFanOut(ctx context.Context, escalation *domain.TicketEscalation, ticket *domain.Ticket) ([]domain.Notification, error) {
	recipients, err := s.admins.ListActiveByUnit(ctx, escalation.ToUnitID)
	if err != nil {
		return nil, err
	}
	notifications := make([]domain.Notification, 0, len(recipients))
	for _, admin := range recipients {
		escalationID := escalation.ID
		notifications = append(notifications, domain.Notification{
			RecipientAdminID: admin.ID,
			UnitID:           escalation.ToUnitID,
			TicketID:         ticket.ID,
			EscalationID:     &escalationID,
			Type:             domain.NotificationTicketEscalated,
			Title:            fmt.Sprintf("Ticket %s escalated to your unit", ticket.TicketNumber),
			Message:          escalation.Reason,
		})
	}
	return notifications, nil
}

// UpdateUnitProgress advances one routed unit's status independently of the
// other units and of the parent ticket. Completing is idempotent: repeating
// the terminal status keeps the original completed_at stamp.
func (s *EscalationService) UpdateUnitProgress(ctx context.Context, principal *domain.Principal, escalationUnitID string, status domain.UnitProgress, notes *string) (*domain.TicketEscalationUnit, error) {
	switch status {
	case domain.UnitProgressPending, domain.UnitProgressInProgress, domain.UnitProgressCompleted:
	default:
		return nil, apperrors.NewValidationError("status", "unknown escalation unit status")
	}

	row, err := s.escalations.GetUnitRow(ctx, escalationUnitID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("escalation unit", map[string]any{"escalation_unit_id": escalationUnitID})
		}
		return nil, apperrors.MapError(err)
	}
	ticket, err := s.loadTicket(ctx, row.TicketID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanWrite(ctx, principal, ticket); err != nil {
		return nil, err
	}
	admin, err := s.bridge.ResolveActingAdmin(ctx, principal)
	if err != nil {
		return nil, err
	}

	oldStatus := row.Status
	row.Status = status
	if notes != nil {
		row.Notes = notes
	}
	if status == domain.UnitProgressCompleted && row.CompletedAt == nil {
		now := time.Now()
		row.CompletedAt = &now
	}
	if err := s.escalations.UpdateUnitRow(ctx, row); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(events.Event{
		Type:     events.EventEscalationUnitUpdated,
		TicketID: row.TicketID,
		Actor:    events.Actor{AccountID: principal.ID, AdminID: &admin.ID},
		Payload: events.EscalationUnitUpdatedPayload{
			EscalationUnitID: row.ID,
			UnitID:           row.UnitID,
			OldStatus:        oldStatus,
			NewStatus:        status,
		},
	})
	return row, nil
}

// ReconcileTicketStatus repairs a ticket whose status flip failed after its
// escalation records were written. Idempotent; safe to run repeatedly.
func (s *EscalationService) ReconcileTicketStatus(ctx context.Context, ticketID string) error {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	escalations, err := s.escalations.ListByTicket(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if len(escalations) == 0 {
		return nil
	}
	if ticket.IsEscalated && ticket.Status != domain.TicketStatusOpen {
		return nil
	}
	if ticket.Status == domain.TicketStatusOpen {
		ticket.Status = domain.TicketStatusEscalated
	}
	ticket.IsEscalated = true
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListForTicket returns the escalation history for a ticket, policy-gated.
func (s *EscalationService) ListForTicket(ctx context.Context, principal *domain.Principal, ticketID string) ([]domain.TicketEscalation, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.requireRead(ctx, principal, ticket); err != nil {
		return nil, err
	}
	escalations, err := s.escalations.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return escalations, nil
}

// ListUnitsForTicket returns the per-unit routing rows for a ticket.
func (s *EscalationService) ListUnitsForTicket(ctx context.Context, principal *domain.Principal, ticketID string) ([]domain.TicketEscalationUnit, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.requireRead(ctx, principal, ticket); err != nil {
		return nil, err
	}
	rows, err := s.escalations.ListUnitsByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rows, nil
}

func (s *EscalationService) requireRead(ctx context.Context, principal *domain.Principal, ticket *domain.Ticket) error {
	allowed, err := s.policy.CanRead(ctx, principal, ticket)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbidden(fmt.Sprintf("ticket %s belongs to another unit and has not been escalated to yours", ticket.TicketNumber))
	}
	return nil
}

func (s *EscalationService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *EscalationService) publish(event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(context.Background(), event)
}

// dedupeCcUnits drops duplicate CC entries and self-references to the
// primary receiving unit, preserving order.
func dedupeCcUnits(ccUnitIDs []string, toUnitID string) []string {
	seen := map[string]struct{}{toUnitID: {}}
	result := make([]string, 0, len(ccUnitIDs))
	for _, unitID := range ccUnitIDs {
		unitID = strings.TrimSpace(unitID)
		if unitID == "" {
			continue
		}
		if _, dup := seen[unitID]; dup {
			continue
		}
		seen[unitID] = struct{}{}
		result = append(result, unitID)
	}
	return result
}
