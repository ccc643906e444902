package churches

import (
	churchsvc "churchflow-backend/internal/application/churches"
	"churchflow-backend/internal/middleware"
	"churchflow-backend/internal/pkg/response"
	"churchflow-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves /api/v1/churches.
type Handlers struct {
	Service *churchsvc.Service
}

// List GET /api/v1/churches
func (h *Handlers) List(c *fiber.Ctx) error {
	churches, err := h.Service.List(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Churches fetched successfully", fiber.Map{"churches": churches}, nil)
}

// Mine GET /api/v1/churches/me
func (h *Handlers) Mine(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	church, err := h.Service.Mine(c.UserContext(), *id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Church fetched successfully", fiber.Map{"church": church}, nil)
}

// Update PATCH /api/v1/churches/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in churchsvc.UpdateInput
	if err := validation.DecodeJSON(c.Body(), &in); err != nil {
		return response.FromError(c, err)
	}
	church, err := h.Service.Update(c.UserContext(), *id, c.Params("id"), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Church updated", fiber.Map{"church": church}, nil)
}
