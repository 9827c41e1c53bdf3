package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/careline/complaint-portal/internal/api/dto"
	"github.com/careline/complaint-portal/internal/domain"
	"github.com/careline/complaint-portal/internal/service"
	apperrors "github.com/careline/complaint-portal/pkg/util/errorutil"
)

// EscalationsHandler serves escalation routing and per-unit progress.
type EscalationsHandler struct {
	escalations *service.EscalationService
}

// NewEscalationsHandler constructs handler.
func NewEscalationsHandler(escalations *service.EscalationService) *EscalationsHandler {
	return &EscalationsHandler{escalations: escalations}
}

// Escalate POST /tickets/:id/escalate.
func (h *EscalationsHandler) Escalate(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.EscalateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	result, err := h.escalations.Escalate(c.Context(), principal, c.Params("id"), service.EscalateInput{
		ToUnitID:         req.ToUnitID,
		CcUnitIDs:        req.CcUnitIDs,
		Reason:           req.Reason,
		Notes:            req.Notes,
		PriorityOverride: req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": escalateResponse(result)})
}

// ListEscalations GET /tickets/:id/escalations.
func (h *EscalationsHandler) ListEscalations(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	escalations, err := h.escalations.ListForTicket(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.EscalationResponse, 0, len(escalations))
	for i := range escalations {
		items = append(items, escalationResponse(&escalations[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListEscalationUnits GET /tickets/:id/escalation-units.
func (h *EscalationsHandler) ListEscalationUnits(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	rows, err := h.escalations.ListUnitsForTicket(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.EscalationUnitResponse, 0, len(rows))
	for i := range rows {
		items = append(items, escalationUnitResponse(&rows[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateUnitStatus PATCH /escalation-units/:id/status.
func (h *EscalationsHandler) UpdateUnitStatus(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUnitStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	row, err := h.escalations.UpdateUnitProgress(c.Context(), principal, c.Params("id"), req.Status, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": escalationUnitResponse(row)})
}

func escalateResponse(result *service.EscalationResult) dto.EscalateResponse {
	units := make([]dto.EscalationUnitResponse, 0, len(result.Units))
	for i := range result.Units {
		units = append(units, escalationUnitResponse(&result.Units[i]))
	}
	return dto.EscalateResponse{
		Escalation:    escalationResponse(result.Escalation),
		Units:         units,
		NotifiedCount: len(result.Notifications),
		Warnings:      result.Warnings,
	}
}

func escalationResponse(esc *domain.TicketEscalation) dto.EscalationResponse {
	return dto.EscalationResponse{
		ID:             esc.ID,
		TicketID:       esc.TicketID,
		FromUnitID:     esc.FromUnitID,
		ToUnitID:       esc.ToUnitID,
		FromUserID:     esc.FromUserID,
		FromRole:       esc.FromRole,
		ToRole:         esc.ToRole,
		Reason:         esc.Reason,
		Notes:          esc.Notes,
		EscalationType: esc.EscalationType,
		CcUnitIDs:      esc.CcUnitIDs,
		CreatedAt:      esc.CreatedAt,
		ResolvedAt:     esc.ResolvedAt,
	}
}

func escalationUnitResponse(row *domain.TicketEscalationUnit) dto.EscalationUnitResponse {
	return dto.EscalationUnitResponse{
		ID:           row.ID,
		TicketID:     row.TicketID,
		EscalationID: row.EscalationID,
		UnitID:       row.UnitID,
		IsPrimary:    row.IsPrimary,
		IsCc:         row.IsCc,
		Status:       row.Status,
		Notes:        row.Notes,
		CompletedAt:  row.CompletedAt,
		CreatedAt:    row.CreatedAt,
	}
}
