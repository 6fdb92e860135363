package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/query"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ComplaintsHandler manages complaint endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// Create POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.service.Submit(c.UserContext(), service.SubmitInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.Category(req.Category),
		Priority:    domain.ComplaintPriority(req.Priority),
		SubmitterID: user.ID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewComplaintResponse(*complaint)})
}

// List GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	criteria, err := parseCriteria(c)
	if err != nil {
		return err
	}
	items := h.service.List(c.UserContext(), user, criteria)
	return c.JSON(fiber.Map{"data": dto.NewComplaintList(items)})
}

// Recent GET /complaints/recent.
func (h *ComplaintsHandler) Recent(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", query.DefaultRecentLimit)
	if limit < 0 {
		return apperrors.NewValidationError("limit must not be negative", map[string]any{"limit": limit})
	}
	items := h.service.Recent(c.UserContext(), user, limit)
	return c.JSON(fiber.Map{"data": dto.NewComplaintList(items)})
}

// Stats GET /complaints/stats.
func (h *ComplaintsHandler) Stats(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.service.Statistics(c.UserContext(), user)})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	complaint, err := h.service.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(*complaint)})
}

// UpdateStatus PATCH /complaints/:id/status.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.service.UpdateStatus(c.UserContext(), user, c.Params("id"), domain.ComplaintStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(*complaint)})
}

// SubmitFeedback POST /complaints/:id/feedback.
func (h *ComplaintsHandler) SubmitFeedback(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	feedback, err := h.service.SubmitFeedback(c.UserContext(), user, service.FeedbackInput{
		ComplaintID: c.Params("id"),
		Rating:      req.Rating,
		Comment:     req.Comment,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewFeedbackResponse(*feedback)})
}

// GetFeedback GET /complaints/:id/feedback.
func (h *ComplaintsHandler) GetFeedback(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	feedback, err := h.service.FeedbackFor(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewFeedbackResponse(*feedback)})
}

func parseCriteria(c *fiber.Ctx) (query.Criteria, error) {
	criteria := query.Criteria{SearchText: c.Query("q")}

	if v, ok, err := queryInt(c, "category"); err != nil {
		return criteria, err
	} else if ok {
		category := domain.Category(v)
		criteria.Category = &category
	}
	if v, ok, err := queryInt(c, "priority"); err != nil {
		return criteria, err
	} else if ok {
		priority := domain.ComplaintPriority(v)
		criteria.Priority = &priority
	}
	if v, ok, err := queryInt(c, "status"); err != nil {
		return criteria, err
	} else if ok {
		status := domain.ComplaintStatus(v)
		criteria.Status = &status
	}
	return criteria, nil
}

func queryInt(c *fiber.Ctx, key string) (int, bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, apperrors.NewValidationError(key+" must be a number", map[string]any{key: raw})
	}
	return v, true, nil
}
