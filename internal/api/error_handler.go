package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// notFoundErrors map to 404.
var notFoundErrors = []error{
	domain.ErrUserNotFound,
	domain.ErrJobNotFound,
	domain.ErrProposalNotFound,
	domain.ErrPaymentNotFound,
	domain.ErrDisputeNotFound,
	domain.ErrNotificationNotFound,
}

// conflictErrors map to 409: state-machine violations and uniqueness guards.
var conflictErrors = []error{
	domain.ErrJobNotOpen,
	domain.ErrJobNotInProgress,
	domain.ErrJobClosed,
	domain.ErrJobNotCompleted,
	domain.ErrNoAcceptedProposal,
	domain.ErrJobExpired,
	domain.ErrProposalNotPending,
	domain.ErrProposalExists,
	domain.ErrAmountMismatch,
	domain.ErrPaymentNotPaid,
	domain.ErrActivePaymentExists,
	domain.ErrDisputeExists,
	domain.ErrDisputeClosed,
	domain.ErrDuplicateRating,
	domain.ErrUserExists,
	domain.ErrConflict,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case isAny(err, notFoundErrors):
		return http.StatusNotFound, err.Error()
	case isAny(err, conflictErrors):
		return http.StatusConflict, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
