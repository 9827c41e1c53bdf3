package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/careline/complaint-portal/internal/api/dto"
	"github.com/careline/complaint-portal/internal/auth"
	"github.com/careline/complaint-portal/internal/domain"
	"github.com/careline/complaint-portal/internal/service"
	apperrors "github.com/careline/complaint-portal/pkg/util/errorutil"
)

// TicketsHandler serves ticket listing, intake, responses, and flags.
type TicketsHandler struct {
	visibility *service.VisibilityService
	tickets    *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(visibility *service.VisibilityService, tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{visibility: visibility, tickets: tickets}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	filter := parseVisibilityFilter(c)
	tickets, err := h.visibility.ListVisible(c.Context(), principal, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// ListTicketsByUnit GET /tickets/by-unit/:unitId.
func (h *TicketsHandler) ListTicketsByUnit(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	unitID := c.Params("unitId")
	if !principal.Role.HasGlobalAccess() && principal.HomeUnit() != unitID {
		return apperrors.NewForbidden("you may only browse your own unit's tickets")
	}
	filter := parseVisibilityFilter(c)
	filter.UnitID = &unitID
	tickets, err := h.visibility.ListVisible(c.Context(), principal, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	ticket, err := h.tickets.CreateTicket(c.Context(), service.TicketCreateInput{
		UnitID:      req.UnitID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	summary := ticketSummary(&domain.VisibleTicket{Ticket: *ticket})
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": summary})
}

// Respond POST /tickets/:id/respond.
func (h *TicketsHandler) Respond(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	result, err := h.tickets.Respond(c.Context(), principal, c.Params("id"), service.RespondInput{
		Message:      req.Message,
		IsInternal:   req.IsInternal,
		MarkResolved: req.MarkResolved,
	})
	if err != nil {
		return err
	}
	body := fiber.Map{"data": responseEntry(result.Response)}
	if len(result.Warnings) > 0 {
		body["warnings"] = result.Warnings
	}
	return c.Status(http.StatusCreated).JSON(body)
}

// ListResponses GET /tickets/:id/responses.
func (h *TicketsHandler) ListResponses(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	responses, err := h.tickets.ListResponses(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponseEntry, 0, len(responses))
	for i := range responses {
		items = append(items, responseEntry(&responses[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Flag POST /tickets/:id/flag.
func (h *TicketsHandler) Flag(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.FlagRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	ticket, err := h.tickets.Flag(c.Context(), principal, c.Params("id"), req.IsFlagged, req.FlagReason)
	if err != nil {
		return err
	}
	summary := ticketSummary(&domain.VisibleTicket{Ticket: *ticket})
	return c.JSON(fiber.Map{"data": summary})
}

func requirePrincipal(c *fiber.Ctx) (*domain.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	return principal, nil
}

func parseVisibilityFilter(c *fiber.Ctx) service.VisibilityFilter {
	filter := service.VisibilityFilter{}
	if unitID := c.Query("unit_id"); unitID != "" {
		filter.UnitID = &unitID
	}
	if statuses := c.Query("status"); statuses != "" {
		for _, part := range strings.Split(statuses, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorities := c.Query("priority"); priorities != "" {
		for _, part := range strings.Split(priorities, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		filter.CategoryID = &categoryID
	}
	if types := c.Query("type"); types != "" {
		for _, part := range strings.Split(types, ",") {
			filter.Types = append(filter.Types, domain.TicketType(strings.TrimSpace(part)))
		}
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}
	if from := parseTime(c.Query("date_from")); from != nil {
		filter.DateFrom = from
	}
	if to := parseTime(c.Query("date_to")); to != nil {
		filter.DateTo = to
	}
	filter.Limit = parseInt(c.Query("limit"), 0)
	return filter
}

func parseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func ticketSummaries(tickets []domain.VisibleTicket) []dto.TicketSummary {
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return items
}

func ticketSummary(ticket *domain.VisibleTicket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:              ticket.ID,
		TicketNumber:    ticket.TicketNumber,
		UnitID:          ticket.UnitID,
		CategoryID:      ticket.CategoryID,
		Type:            ticket.Type,
		Title:           ticket.Title,
		Status:          ticket.Status,
		Priority:        ticket.Priority,
		IsEscalated:     ticket.IsEscalated || ticket.EscalationRelated,
		IsFlagged:       ticket.IsFlagged,
		SLADeadline:     ticket.SLADeadline,
		CreatedAt:       ticket.CreatedAt,
		EscalationDate:  ticket.EscalationDate,
		EscalationType:  ticket.Direction,
		FirstResponseAt: ticket.FirstResponseAt,
		ResolvedAt:      ticket.ResolvedAt,
	}
}

func responseEntry(response *domain.TicketResponse) dto.TicketResponseEntry {
	return dto.TicketResponseEntry{
		ID:         response.ID,
		TicketID:   response.TicketID,
		AdminID:    response.AdminID,
		Message:    response.Message,
		IsInternal: response.IsInternal,
		CreatedAt:  response.CreatedAt,
	}
}
