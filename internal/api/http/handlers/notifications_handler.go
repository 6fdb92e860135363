package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// NotificationsHandler manages notification endpoints.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// List GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	items := h.service.ListFor(c.UserContext(), user, c.QueryBool("unread", false))
	return c.JSON(fiber.Map{"data": dto.NewNotificationList(items)})
}

// MarkRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkRead(c.UserContext(), user, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Broadcast POST /notifications/broadcast.
func (h *NotificationsHandler) Broadcast(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	notification, err := h.service.Broadcast(c.UserContext(), user, service.BroadcastInput{
		Title:    req.Title,
		Message:  req.Message,
		Audience: domain.Audience(req.Audience),
		Type:     domain.NotificationType(req.Type),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewNotificationResponse(*notification)})
}

// GetPreferences GET /notifications/preferences.
func (h *NotificationsHandler) GetPreferences(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.service.Preferences(c.UserContext(), user)})
}

// UpdatePreferences PUT /notifications/preferences.
func (h *NotificationsHandler) UpdatePreferences(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.PreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	prefs := req.Apply(h.service.Preferences(c.UserContext(), user))
	if err := h.service.UpdatePreferences(c.UserContext(), user, prefs); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": prefs})
}
