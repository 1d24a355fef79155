package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/desertthunder/snaketracks/internal/services"
	"github.com/desertthunder/snaketracks/internal/shared"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// JSON responds with status and v encoded as JSON.
func JSON(status int, v any) Response {
	return Response{Status: status, Body: v}
}

// Redirect responds with a 302 to location.
func Redirect(location string) Response {
	return Response{Status: http.StatusFound, Location: location}
}

// Fail maps err onto a status code. message describes the operation for processing faults.
//
//   - [services.UpstreamError]: the upstream status, raw body as details
//   - [shared.ErrMissingCredentials]: 500
//   - [shared.ErrMissingArgument], [shared.ErrInvalidInput]: 400
//   - [shared.ErrNotAuthenticated]: 401
//   - [shared.ErrAuthFailed], [shared.ErrInvalidState]: 400
//   - anything else: 500 with the error text as details
func Fail(err error, message string) Response {
	if upstream, ok := services.AsUpstreamError(err); ok {
		status := upstream.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return JSON(status, ErrorBody{Error: message, Details: upstream.Body})
	}

	switch {
	case errors.Is(err, shared.ErrMissingCredentials):
		return JSON(http.StatusInternalServerError, ErrorBody{Error: err.Error()})
	case errors.Is(err, shared.ErrMissingArgument), errors.Is(err, shared.ErrInvalidInput):
		return JSON(http.StatusBadRequest, ErrorBody{Error: err.Error()})
	case errors.Is(err, shared.ErrNotAuthenticated):
		return JSON(http.StatusUnauthorized, ErrorBody{Error: "not authenticated"})
	case errors.Is(err, shared.ErrAuthFailed), errors.Is(err, shared.ErrInvalidState):
		return JSON(http.StatusBadRequest, ErrorBody{Error: err.Error()})
	default:
		return JSON(http.StatusInternalServerError, ErrorBody{Error: message, Details: err.Error()})
	}
}
