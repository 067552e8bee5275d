package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

func invokeErrorHandler(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec.Code, body.Error
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", fmt.Errorf("%w: stars must be between 1 and 5", domain.ErrValidation), http.StatusBadRequest},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"job not found", domain.ErrJobNotFound, http.StatusNotFound},
		{"payment not found", domain.ErrPaymentNotFound, http.StatusNotFound},
		{"duplicate proposal", domain.ErrProposalExists, http.StatusConflict},
		{"job closed", domain.ErrJobClosed, http.StatusConflict},
		{"active payment", domain.ErrActivePaymentExists, http.StatusConflict},
		{"duplicate rating", domain.ErrDuplicateRating, http.StatusConflict},
		{"lost write race", domain.ErrConflict, http.StatusConflict},
		{"echo error passthrough", echo.NewHTTPError(http.StatusBadRequest, "offer is invalid"), http.StatusBadRequest},
	}

	for _, tc := range cases {
		code, msg := invokeErrorHandler(t, tc.err)
		if code != tc.code {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.code, code)
		}
		if msg == "" {
			t.Errorf("%s: error envelope must carry a message", tc.name)
		}
	}
}

func TestErrorHandler_UnknownErrorIsOpaque(t *testing.T) {
	code, msg := invokeErrorHandler(t, errors.New("mongo: connection reset"))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if msg != "internal server error" {
		t.Fatalf("internal details must not leak, got %q", msg)
	}
}

func TestErrorHandler_CommittedResponseUntouched(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := c.NoContent(http.StatusNoContent); err != nil {
		t.Fatalf("commit response: %v", err)
	}
	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrJobNotFound, c)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("committed response must not be rewritten, got %d", rec.Code)
	}
}
