package service

import (
	"context"
	"errors"
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

// TicketService owns ticket intake, responses, and moderation flags.
type TicketService struct {
	tickets    repository.TicketRepository
	responses  repository.ResponseRepository
	units      repository.UnitRepository
	policy     *policy.Engine
	bridge     *identity.AdminBridge
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	ResponseRepo repository.ResponseRepository
	UnitRepo     repository.UnitRepository
	Policy       *policy.Engine
	Bridge       *identity.AdminBridge
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		responses:  deps.ResponseRepo,
		units:      deps.UnitRepo,
		policy:     deps.Policy,
		bridge:     deps.Bridge,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// TicketCreateInput describes an intake submission.
type TicketCreateInput struct {
	UnitID      string
	CategoryID  *string
	Type        domain.TicketType
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// CreateTicket records an intake submission with its SLA deadline.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.UnitID) == "" {
		return nil, apperrors.NewValidationError("unit_id", "owning unit is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title", "title is required")
	}

	unit, err := s.units.GetByID(ctx, input.UnitID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unit_id", "unit does not exist")
		}
		return nil, apperrors.MapError(err)
	}
	if !unit.IsActive {
		return nil, apperrors.NewValidationError("unit_id", "unit is inactive")
	}

	ticketType := input.Type
	if ticketType == "" {
		ticketType = domain.TicketTypeComplaint
	}

	now := time.Now()
	ticket := &domain.Ticket{
		TicketNumber: generateTicketNumber(),
		UnitID:       input.UnitID,
		CategoryID:   input.CategoryID,
		Type:         ticketType,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Status:       domain.TicketStatusOpen,
		Priority:     input.Priority,
	}
	if ticket.Priority == "" {
		// intake submissions without an explicit priority follow the
		// type-driven SLA table
		ticket.Priority = domain.TicketPriorityMedium
		ticket.SLADeadline = sla.Deadline(sla.ClassIntake, ticket.Priority, ticketType, now)
	} else {
		ticket.SLADeadline = sla.Deadline(sla.ClassTicket, ticket.Priority, ticketType, now)
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{AccountID: "intake"},
		Payload: events.TicketCreatedPayload{
			UnitID:      ticket.UnitID,
			Type:        ticket.Type,
			Priority:    ticket.Priority,
			Title:       ticket.Title,
			SLADeadline: ticket.SLADeadline,
		},
	})
	return ticket, nil
}

// RespondInput describes an admin reply.
type RespondInput struct {
	Message      string
	IsInternal   bool
	MarkResolved bool
}

// RespondResult carries the created response plus warnings for secondary
// effects that failed after the reply was written.
type RespondResult struct {
	Response *domain.TicketResponse
	Ticket   *domain.Ticket
	Warnings []string
}

// Respond records an authorized admin reply on a ticket. The first public
// reply stamps first_response_at; mark_resolved resolves the ticket
// independent of its escalation state.
func (s *TicketService) Respond(ctx context.Context, principal *domain.Principal, ticketID string, input RespondInput) (*RespondResult, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.NewValidationError("message", "response message is required")
	}

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

	response := &domain.TicketResponse{
		TicketID:   ticket.ID,
		AdminID:    admin.ID,
		Message:    strings.TrimSpace(input.Message),
		IsInternal: input.IsInternal,
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return nil, apperrors.MapError(err)
	}

	result := &RespondResult{Response: response, Ticket: ticket}

	now := time.Now()
	dirty := false
	if !input.IsInternal && ticket.FirstResponseAt == nil {
		ticket.FirstResponseAt = &now
		dirty = true
	}
	if input.MarkResolved && ticket.Status != domain.TicketStatusResolved {
		ticket.Status = domain.TicketStatusResolved
		if ticket.ResolvedAt == nil {
			ticket.ResolvedAt = &now
		}
		dirty = true
	}
	if dirty {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			s.logger.Warn("ticket not updated after response",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
			result.Warnings = append(result.Warnings, "response recorded but ticket state was not updated")
		}
	}

	s.publish(events.Event{
		Type:     events.EventTicketResponded,
		TicketID: ticket.ID,
		Actor:    events.Actor{AccountID: principal.ID, AdminID: &admin.ID},
		Payload: events.TicketRespondedPayload{
			ResponseID:   response.ID,
			AdminID:      admin.ID,
			IsInternal:   response.IsInternal,
			MarkResolved: input.MarkResolved,
		},
	})
	return result, nil
}

// ListResponses returns the reply thread for a ticket, policy-gated.
func (s *TicketService) ListResponses(ctx context.Context, principal *domain.Principal, ticketID string) ([]domain.TicketResponse, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.policy.CanRead(ctx, principal, ticket)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.NewForbidden("ticket " + ticket.TicketNumber + " belongs to another unit and has not been escalated to yours")
	}
	responses, err := s.responses.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return responses, nil
}

// Flag sets or clears the moderation flag on a ticket.
func (s *TicketService) Flag(ctx context.Context, principal *domain.Principal, ticketID string, isFlagged bool, reason *string) (*domain.Ticket, error) {
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

	ticket.IsFlagged = isFlagged
	if isFlagged {
		ticket.FlagReason = reason
	} else {
		ticket.FlagReason = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(events.Event{
		Type:     events.EventTicketFlagged,
		TicketID: ticket.ID,
		Actor:    events.Actor{AccountID: principal.ID, AdminID: &admin.ID},
		Payload: events.TicketFlaggedPayload{
			IsFlagged:  isFlagged,
			FlagReason: ticket.FlagReason,
		},
	})
	return ticket, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) publish(event events.Event) {
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

func generateTicketNumber() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
