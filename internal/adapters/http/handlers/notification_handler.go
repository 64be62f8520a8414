package handlers

import (
	"strconv"

	"masonko-stokvel/internal/adapters/http/middleware"
	"masonko-stokvel/internal/core/services"
	"masonko-stokvel/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	notifyService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifyService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifyService: notifyService}
}

// List lists the caller's notifications plus broadcasts
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	caller := middleware.Identity(c)

	notifications, err := h.notifyService.ListForUser(c.Context(), caller.MemberID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list notifications")
	}
	return response.Success(c, "", notifications)
}

// MarkRead marks a notification as read
// @Summary Mark notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Response
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}

	if err := h.notifyService.MarkRead(c.Context(), uint(id)); err != nil {
		return response.InternalServerError(c, "Failed to mark notification read")
	}
	return response.Success(c, "Notification marked read", nil)
}
