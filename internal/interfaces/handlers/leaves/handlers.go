package leaves

import (
	leavesvc "churchflow-backend/internal/application/leaves"
	"churchflow-backend/internal/middleware"
	"churchflow-backend/internal/pkg/response"
	"churchflow-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves /api/v1/leaves.
type Handlers struct {
	Service *leavesvc.Service
}

// Create POST /api/v1/leaves
func (h *Handlers) Create(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in leavesvc.CreateInput
	if err := validation.DecodeJSON(c.Body(), &in); err != nil {
		return response.FromError(c, err)
	}
	leave, err := h.Service.Create(c.UserContext(), *id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Leave request created", fiber.Map{"leave": leave}, nil)
}

// List GET /api/v1/leaves
func (h *Handlers) List(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	leaves, err := h.Service.List(c.UserContext(), *id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Leave requests fetched successfully", fiber.Map{"leaves": leaves}, nil)
}

// Get GET /api/v1/leaves/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	leave, err := h.Service.Get(c.UserContext(), *id, c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Leave request fetched successfully", fiber.Map{"leave": leave}, nil)
}

// Update PUT /api/v1/leaves/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in leavesvc.UpdateInput
	if err := validation.DecodeJSON(c.Body(), &in); err != nil {
		return response.FromError(c, err)
	}
	leave, err := h.Service.Update(c.UserContext(), *id, c.Params("id"), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Leave request updated successfully", fiber.Map{"leave": leave}, nil)
}

// SetStatus PATCH /api/v1/leaves/:id
func (h *Handlers) SetStatus(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in leavesvc.PatchInput
	if err := validation.DecodeJSON(c.Body(), &in); err != nil {
		return response.FromError(c, err)
	}
	leave, label, err := h.Service.SetStatus(c.UserContext(), *id, c.Params("id"), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Leave request "+label+" successfully", fiber.Map{"leave": leave}, nil)
}

// Delete DELETE /api/v1/leaves/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.Delete(c.UserContext(), *id, c.Params("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Leave request deleted successfully", nil, nil)
}
