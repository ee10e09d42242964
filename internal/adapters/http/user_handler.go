package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/collabtrack/core/internal/application/services"
	"github.com/collabtrack/core/internal/infrastructure/logger"
	"github.com/collabtrack/core/internal/ports"
)

// UserHandler handles profile and account requests
type UserHandler struct {
	userService *services.UserService
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// GetCurrentUser returns the authenticated user's profile
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	userID := getUserIDFromContext(c)

	user, err := h.userService.Get(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateCurrentUser updates the authenticated user's profile
func (h *UserHandler) UpdateCurrentUser(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// UpdatePassword changes the authenticated user's password
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.UpdatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.UpdatePassword(c.Request().Context(), userID, req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Password updated successfully"})
}

// DeleteCurrentUser deletes the authenticated user's account and
// everything the account owns.
func (h *UserHandler) DeleteCurrentUser(c echo.Context) error {
	userID := getUserIDFromContext(c)

	if err := h.userService.DeleteAccount(c.Request().Context(), userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Account deleted successfully"})
}
