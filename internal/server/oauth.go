package server

import (
	"fmt"
	"net/http"

	"github.com/desertthunder/snaketracks/internal/session"
	"github.com/desertthunder/snaketracks/internal/shared"
)

// AuthStatus is the body of GET /auth/status.
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	UserName      string `json:"user_name"`
	UserImage     string `json:"user_image"`
}

// login starts the authorization code flow with a fresh state. No upstream call is made.
func (srv *Server) login(r *http.Request, s *session.Session) Response {
	if !srv.spotify.Configured() {
		srv.logger.Warn("starting spotify login without client credentials")
	}
	state := s.BeginLogin()
	return Redirect(srv.spotify.AuthURL(state))
}

// callback completes the flow. The token and profile are stored only after both the exchange and the
// profile fetch succeed; the pending state is consumed either way.
func (srv *Server) callback(r *http.Request, s *session.Session) Response {
	q := r.URL.Query()
	expected := s.ConsumeState()

	if expected == "" || q.Get("state") != expected {
		return srv.callbackFailed(shared.ErrInvalidState)
	}

	if e := q.Get("error"); e != "" {
		return srv.callbackFailed(fmt.Errorf("%w: %s", shared.ErrAuthFailed, e))
	}

	ctx := r.Context()
	token, err := srv.spotify.Exchange(ctx, q.Get("code"))
	if err != nil {
		return srv.callbackFailed(err)
	}

	user, err := srv.spotify.CurrentUser(ctx, token)
	if err != nil {
		return srv.callbackFailed(fmt.Errorf("%w: failed to fetch profile: %v", shared.ErrAuthFailed, err))
	}

	s.Authenticate(token, session.Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL(),
	})
	srv.logger.Info("spotify login complete", "user", user.ID)
	return Redirect("/")
}

func (srv *Server) callbackFailed(err error) Response {
	srv.logger.Warn("spotify callback failed", "error", err)
	return JSON(http.StatusBadRequest, ErrorBody{Error: err.Error()})
}

func (srv *Server) authStatus(r *http.Request, s *session.Session) Response {
	return JSON(http.StatusOK, AuthStatus{
		Authenticated: s.Authenticated(),
		UserName:      s.DisplayName,
		UserImage:     s.AvatarURL,
	})
}

func (srv *Server) logout(r *http.Request, s *session.Session) Response {
	s.Clear()
	return Redirect("/")
}
