package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/desertthunder/snaketracks/internal/services"
	"github.com/desertthunder/snaketracks/internal/shared"
)

func TestFail(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		details string
	}{
		{"Missing Credentials", fmt.Errorf("%w: key", shared.ErrMissingCredentials), http.StatusInternalServerError, ""},
		{"Missing Argument", fmt.Errorf("%w: username", shared.ErrMissingArgument), http.StatusBadRequest, ""},
		{"Invalid Input", shared.ErrInvalidInput, http.StatusBadRequest, ""},
		{"Not Authenticated", shared.ErrNotAuthenticated, http.StatusUnauthorized, ""},
		{"Auth Failed", shared.ErrAuthFailed, http.StatusBadRequest, ""},
		{"Invalid State", shared.ErrInvalidState, http.StatusBadRequest, ""},
		{
			"Wrapped Upstream",
			fmt.Errorf("failed: %w", &services.UpstreamError{Service: "Last.fm", StatusCode: 503, Body: "down"}),
			http.StatusServiceUnavailable,
			"down",
		},
		{
			"Upstream Non-Error Status",
			&services.UpstreamError{Service: "Deezer", StatusCode: 302, Body: "moved"},
			http.StatusBadGateway,
			"moved",
		},
		{"Processing", errors.New("kaboom"), http.StatusInternalServerError, "kaboom"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := Fail(tc.err, "operation failed")
			if resp.Status != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, resp.Status)
			}
			body, ok := resp.Body.(ErrorBody)
			if !ok {
				t.Fatalf("expected ErrorBody, got %T", resp.Body)
			}
			if body.Error == "" {
				t.Error("expected error message")
			}
			if body.Details != tc.details {
				t.Errorf("expected details %q, got %q", tc.details, body.Details)
			}
		})
	}
}
