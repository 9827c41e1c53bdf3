package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/careline/complaint-portal/internal/api/dto"
	"github.com/careline/complaint-portal/internal/repository"
	apperrors "github.com/careline/complaint-portal/pkg/util/errorutil"
)

// UnitsHandler serves reference data about organizational units.
type UnitsHandler struct {
	units repository.UnitRepository
}

// NewUnitsHandler constructs handler.
func NewUnitsHandler(units repository.UnitRepository) *UnitsHandler {
	return &UnitsHandler{units: units}
}

// ListUnits GET /units.
func (h *UnitsHandler) ListUnits(c *fiber.Ctx) error {
	units, err := h.units.ListActive(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.UnitResponse, 0, len(units))
	for _, unit := range units {
		items = append(items, dto.UnitResponse{ID: unit.ID, Name: unit.Name, Code: unit.Code})
	}
	return c.JSON(fiber.Map{"data": items})
}
