package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Shared helper types and context accessors for the HTTP handlers.
// Domain errors returned by the services pass through untouched; the
// server's error handler translates them to status codes.

// MessageResponse is a generic message payload
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is a generic error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CountResponse reports how many records an operation touched
type CountResponse struct {
	Count int64 `json:"count"`
}

func getUserIDFromContext(c echo.Context) uuid.UUID {
	user := c.Get("user")
	if user == nil {
		return uuid.Nil
	}

	if userID, ok := user.(uuid.UUID); ok {
		return userID
	}

	return uuid.Nil
}

func parseIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}
