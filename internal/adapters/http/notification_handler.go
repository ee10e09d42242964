package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/collabtrack/core/internal/application/services"
	"github.com/collabtrack/core/internal/infrastructure/logger"
	"github.com/collabtrack/core/internal/ports"
)

// NotificationHandler handles the notification read surface
type NotificationHandler struct {
	notificationService *services.NotificationService
	logger              *logger.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// ListNotifications returns the user's notifications, newest first
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	userID := getUserIDFromContext(c)

	filter := ports.NotificationFilter{}
	filter.UnreadOnly = c.QueryParam("unread") == "true"

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		filter.Limit = limit
	}
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid offset parameter")
		}
		filter.Offset = offset
	}

	notifications, err := h.notificationService.List(c.Request().Context(), userID, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, notifications)
}

// GetUnreadCount returns the number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID := getUserIDFromContext(c)

	count, err := h.notificationService.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CountResponse{Count: count})
}

// MarkRead marks one notification as read
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID := getUserIDFromContext(c)

	notificationID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	notification, err := h.notificationService.MarkRead(c.Request().Context(), notificationID, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, notification)
}

// MarkAllRead marks every unread notification as read
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID := getUserIDFromContext(c)

	count, err := h.notificationService.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CountResponse{Count: count})
}

// DeleteNotification removes one notification
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	userID := getUserIDFromContext(c)

	notificationID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.notificationService.Delete(c.Request().Context(), notificationID, userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Notification deleted successfully"})
}

// ClearRead removes every read notification
func (h *NotificationHandler) ClearRead(c echo.Context) error {
	userID := getUserIDFromContext(c)

	count, err := h.notificationService.ClearRead(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CountResponse{Count: count})
}
