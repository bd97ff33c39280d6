package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-portal/internal/api/dto"
	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/service"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util/errorutil"
)

// AdminAuthHandler exposes signup and login for one domain's admins.
type AdminAuthHandler struct {
	domain domain.Domain
	auth   *service.AuthService
}

// NewAdminAuthHandler constructs handler bound to domain d.
func NewAdminAuthHandler(d domain.Domain, authService *service.AuthService) *AdminAuthHandler {
	return &AdminAuthHandler{domain: d, auth: authService}
}

// Signup handles POST /api/auth/{domain}-admin/signup.
func (h *AdminAuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.AdminSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	admin, token, err := h.auth.Signup(c.UserContext(), h.domain, req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewAuthResponse(admin, token))
}

// Login handles POST /api/auth/{domain}-admin/login.
func (h *AdminAuthHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	admin, token, err := h.auth.Login(c.UserContext(), h.domain, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAuthResponse(admin, token))
}
