package leaving

import (
	leavingsvc "churchflow-backend/internal/application/leaving"
	membersvc "churchflow-backend/internal/application/members"
	"churchflow-backend/internal/middleware"
	"churchflow-backend/internal/pkg/response"
	"churchflow-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves /api/v1/leaving. Members backs the member picker at /leaving/search.
type Handlers struct {
	Service *leavingsvc.Service
	Members *membersvc.Service
}

// Issue POST /api/v1/leaving
func (h *Handlers) Issue(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in leavingsvc.IssueInput
	if err := validation.DecodeJSON(c.Body(), &in); err != nil {
		return response.FromError(c, err)
	}
	view, err := h.Service.Issue(c.UserContext(), *id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Leaving certificate created successfully", fiber.Map{"leaving": view}, nil)
}

// List GET /api/v1/leaving?status=&startDate=&endDate=
func (h *Handlers) List(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	res, err := h.Service.List(c.UserContext(), *id, leavingsvc.ListQuery{
		Status:    c.Query("status"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Leaving certificates fetched successfully", res, nil)
}

// Stats GET /api/v1/leaving/stats?year=
func (h *Handlers) Stats(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	res, err := h.Service.Stats(c.UserContext(), *id, c.Query("year"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Statistics fetched successfully", res, nil)
}

// Summary GET /api/v1/leaving/summary
func (h *Handlers) Summary(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	res, err := h.Service.Summary(c.UserContext(), *id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Summary fetched successfully", fiber.Map{"summary": res}, nil)
}

// SearchMembers GET /api/v1/leaving/search?q=
func (h *Handlers) SearchMembers(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	q := c.Query("q")
	found, err := h.Members.Search(c.UserContext(), *id, q)
	if err != nil {
		return response.FromError(c, err)
	}
	message := "Members fetched successfully"
	if membersvc.ShortQuery(q) {
		message = "Query too short"
	}
	return response.Success(c, message, fiber.Map{"members": found, "count": len(found)}, nil)
}

// PreviewNumber GET /api/v1/leaving/preview-number
func (h *Handlers) PreviewNumber(c *fiber.Ctx) error {
	number, err := h.Service.Preview(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Next certificate number", fiber.Map{"certificateNumber": number}, nil)
}

// Generate POST /api/v1/leaving/generate
func (h *Handlers) Generate(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in leavingsvc.GenerateInput
	if err := validation.DecodeJSON(c.Body(), &in); err != nil {
		return response.FromError(c, err)
	}
	cert, err := h.Service.Generate(c.UserContext(), *id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Certificate generated successfully", fiber.Map{"certificate": cert}, nil)
}

// Get GET /api/v1/leaving/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	view, err := h.Service.Get(c.UserContext(), *id, c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Leaving certificate fetched successfully", fiber.Map{"leaving": view}, nil)
}

// Update PATCH /api/v1/leaving/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in leavingsvc.UpdateInput
	if err := validation.DecodeJSON(c.Body(), &in); err != nil {
		return response.FromError(c, err)
	}
	view, err := h.Service.Update(c.UserContext(), *id, c.Params("id"), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Leaving certificate updated successfully", fiber.Map{"leaving": view}, nil)
}

// Delete DELETE /api/v1/leaving/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.Delete(c.UserContext(), *id, c.Params("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Leaving certificate deleted successfully", nil, nil)
}

// Events GET /api/v1/leaving/:id/events
func (h *Handlers) Events(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	events, err := h.Service.Events(c.UserContext(), *id, c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Certificate events fetched successfully", fiber.Map{"events": events}, nil)
}
