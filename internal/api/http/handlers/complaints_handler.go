package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-portal/internal/api/dto"
	"github.com/spec-kit/complaint-portal/internal/auth"
	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/service"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util/errorutil"
)

// ComplaintsHandler exposes submission and admin endpoints for one domain.
type ComplaintsHandler struct {
	domain     domain.Domain
	complaints *service.ComplaintService
	engine     *service.LifecycleEngine
}

// NewComplaintsHandler constructs handler bound to domain d.
func NewComplaintsHandler(d domain.Domain, complaints *service.ComplaintService, engine *service.LifecycleEngine) *ComplaintsHandler {
	return &ComplaintsHandler{domain: d, complaints: complaints, engine: engine}
}

// Submit handles POST /api/{domain}-complaints.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	var req dto.ComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.complaints.Submit(c.UserContext(), h.domain, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewComplaintResponse(complaint, false))
}

// List handles GET /api/{domain}-complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}
	complaints, err := h.complaints.List(c.UserContext(), session.Token, h.domain)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewComplaintList(complaints))
}

// Get handles GET /api/{domain}-complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}
	complaint, err := h.complaints.Get(c.UserContext(), session.Token, h.domain, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewComplaintResponse(complaint, true))
}

// UpdateStatus handles PATCH /api/{domain}-complaints/:id/status.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.engine.Transition(c.UserContext(), session.Token, h.domain, c.Params("id"), domain.ComplaintStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewComplaintResponse(complaint, true))
}

func sessionFrom(c *fiber.Ctx) (auth.Session, error) {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return auth.Session{}, apperrors.NewUnauthorized("missing session")
	}
	return session, nil
}
