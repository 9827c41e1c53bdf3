package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/careline/complaint-portal/internal/api/dto"
	"github.com/careline/complaint-portal/internal/service"
	apperrors "github.com/careline/complaint-portal/pkg/util/errorutil"
)

// AuthHandler serves admin login.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email", "email and password are required")
	}
	admin, token, expiresAt, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		AdminID:   admin.ID,
		Name:      admin.Name,
		Role:      string(admin.Role),
	}})
}
