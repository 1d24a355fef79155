package server

import (
	"net/http"

	"github.com/desertthunder/snaketracks/internal/session"
	"github.com/desertthunder/snaketracks/internal/shared"
)

// snakeTracks serves the game's track list. Authentication is checked before the period is read.
func (srv *Server) snakeTracks(r *http.Request, s *session.Session) Response {
	if !s.Authenticated() {
		return Fail(shared.ErrNotAuthenticated, "")
	}

	tracks, err := srv.tracks.TopTracks(r.Context(), s.Token, r.URL.Query().Get("period"))
	if err != nil {
		return Fail(err, "failed to fetch tracks")
	}
	return JSON(http.StatusOK, tracks)
}
