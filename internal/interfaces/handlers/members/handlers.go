package members

import (
	membersvc "churchflow-backend/internal/application/members"
	"churchflow-backend/internal/middleware"
	"churchflow-backend/internal/pkg/response"
	"churchflow-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves /api/v1/members.
type Handlers struct {
	Service *membersvc.Service
}

// List GET /api/v1/members
func (h *Handlers) List(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	res, err := h.Service.List(c.UserContext(), *id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Members fetched successfully", res, nil)
}

// Create POST /api/v1/members
func (h *Handlers) Create(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in membersvc.CreateInput
	if err := validation.DecodeJSON(c.Body(), &in); err != nil {
		return response.FromError(c, err)
	}
	member, err := h.Service.Create(c.UserContext(), *id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Member created successfully", fiber.Map{"member": member}, nil)
}

// Search GET /api/v1/members/search?q=
func (h *Handlers) Search(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	q := c.Query("q")
	found, err := h.Service.Search(c.UserContext(), *id, q)
	if err != nil {
		return response.FromError(c, err)
	}
	message := "Members found"
	if membersvc.ShortQuery(q) {
		message = "Query too short"
	}
	return response.Success(c, message, fiber.Map{"members": found, "count": len(found)}, nil)
}

// Get GET /api/v1/members/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	member, err := h.Service.Get(c.UserContext(), *id, c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Member fetched successfully", fiber.Map{"member": member}, nil)
}

// Update PATCH /api/v1/members/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in membersvc.UpdateInput
	if err := validation.DecodeJSON(c.Body(), &in); err != nil {
		return response.FromError(c, err)
	}
	member, err := h.Service.Update(c.UserContext(), *id, c.Params("id"), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Member updated successfully", fiber.Map{"member": member}, nil)
}

// Delete DELETE /api/v1/members/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.Delete(c.UserContext(), *id, c.Params("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Member deleted successfully", nil, nil)
}
