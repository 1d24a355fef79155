package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/snaketracks/internal/session"
	"github.com/desertthunder/snaketracks/internal/shared"
)

const maxBodyBytes = 1 << 16

type saveUsernameRequest struct {
	Username string `json:"username"`
}

// SaveUsernameResponse is the body of POST /api/lastfm/save-username.
type SaveUsernameResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
}

// UsernameResponse is the body of GET /api/lastfm/get-username.
type UsernameResponse struct {
	Username    string `json:"username"`
	HasUsername bool   `json:"has_username"`
}

func (srv *Server) lastfmStats(r *http.Request, s *session.Session) Response {
	stats, err := srv.stats.Stats(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		return Fail(err, "failed to fetch last.fm statistics")
	}
	return JSON(http.StatusOK, stats)
}

func (srv *Server) saveUsername(r *http.Request, s *session.Session) Response {
	var req saveUsernameRequest
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return Fail(fmt.Errorf("%w: request body must be JSON with a username", shared.ErrInvalidInput), "")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Fail(fmt.Errorf("%w: request body must hold a single JSON object", shared.ErrInvalidInput), "")
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return Fail(fmt.Errorf("%w: username", shared.ErrMissingArgument), "")
	}

	s.ScrobbleUsername = username
	return JSON(http.StatusOK, SaveUsernameResponse{Success: true, Username: username})
}

func (srv *Server) getUsername(r *http.Request, s *session.Session) Response {
	return JSON(http.StatusOK, UsernameResponse{
		Username:    s.ScrobbleUsername,
		HasUsername: s.ScrobbleUsername != "",
	})
}
