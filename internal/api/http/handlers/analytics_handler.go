package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/service"
)

// AnalyticsHandler serves the admin reporting view.
type AnalyticsHandler struct {
	service *service.ComplaintService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(complaintService *service.ComplaintService) *AnalyticsHandler {
	return &AnalyticsHandler{service: complaintService}
}

// Get GET /analytics.
func (h *AnalyticsHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	report, err := h.service.Analytics(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}
