package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/api/handler"
	"github.com/supportdesk/support-system/internal/core/domain"
)

// domainErrors maps each public sentinel to its status and code. The table is
// part of the API contract.
var domainErrors = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{domain.ErrNotAuthenticated, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Not authenticated"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect email or password"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Access forbidden"},
	{domain.ErrEmailExists, http.StatusConflict, "EMAIL_EXISTS", "Email already registered"},
	{domain.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "User not found"},
	{domain.ErrTicketNotFound, http.StatusNotFound, "TICKET_NOT_FOUND", "Ticket not found"},
	{domain.ErrIdempotencyInProgress, http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "A request with this Idempotency-Key is still being processed"},
	{domain.ErrInvalidRole, http.StatusBadRequest, "INVALID_ROLE", "Role must be one of: user, operator, manager, admin"},
	{domain.ErrInvalidTicketStatus, http.StatusBadRequest, "INVALID_STATUS", "Status must be one of: open, in_progress, closed"},
	{domain.ErrInvalidTicketPriority, http.StatusBadRequest, "INVALID_PRIORITY", "Priority must be one of: low, medium, high, urgent"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status and stable code.
//   - Renders validation failures as 422 with per-field details.
//   - Logs unexpected errors internally without leaking details to the client.
//
// Every response uses {"error": {"code", "message", "details"}}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, handler.ErrorResponse{Error: body})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorBody) {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return m.status, handler.ErrorBody{Code: m.code, Message: m.message}
		}
	}

	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, handler.ErrorBody{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request data",
			Details: ve.Fields,
		}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return he.Code, handler.ErrorBody{Code: httpCode(he.Code), Message: fmt.Sprintf("%v", he.Message)}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorBody{Code: "INTERNAL_ERROR", Message: "Internal server error"}
}

// httpCode derives a machine-readable code from a framework status.
func httpCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "NOT_AUTHENTICATED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	}
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
