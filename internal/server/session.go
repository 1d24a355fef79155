package server

import (
	"errors"
	"net/http"

	"github.com/desertthunder/snaketracks/internal/session"
	"github.com/desertthunder/snaketracks/internal/shared"
)

// Response is what an [Action] returns. A non-empty Location redirects; otherwise Body is sent as JSON.
type Response struct {
	Status   int
	Body     any
	Location string
}

// Action handles a request with the caller's session. Mutations to s are persisted after it returns.
type Action func(r *http.Request, s *session.Session) Response

// action adapts an [Action] to [http.Handler]: it loads the session named by the cookie (or starts a new
// one), runs the action, then saves the session, or deletes it when it was cleared or holds nothing.
func (srv *Server) action(a Action) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, existing, err := srv.loadSession(r)
		if err != nil {
			srv.logger.Error("failed to load session", "error", err)
			writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: "session unavailable"})
			return
		}

		resp := a(r, sess)

		if err := srv.persistSession(w, r, sess, existing); err != nil {
			srv.logger.Error("failed to save session", "session", sess.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: "session unavailable"})
			return
		}

		if resp.Location != "" {
			status := resp.Status
			if status == 0 {
				status = http.StatusFound
			}
			http.Redirect(w, r, resp.Location, status)
			return
		}

		status := resp.Status
		if status == 0 {
			status = http.StatusOK
		}
		writeJSON(w, status, resp.Body)
	})
}

// loadSession reports whether the session came from the store.
func (srv *Server) loadSession(r *http.Request) (*session.Session, bool, error) {
	cookie, err := r.Cookie(srv.cookie.Name)
	if err != nil || cookie.Value == "" {
		return session.New(), false, nil
	}

	sess, err := srv.store.Load(r.Context(), cookie.Value)
	switch {
	case err == nil:
		return sess, true, nil
	case errors.Is(err, shared.ErrSessionNotFound):
		return session.New(), false, nil
	default:
		return nil, false, err
	}
}

func (srv *Server) persistSession(w http.ResponseWriter, r *http.Request, sess *session.Session, existing bool) error {
	if prev := sess.PreviousID(); existing && prev != "" && prev != sess.ID {
		if err := srv.store.Delete(r.Context(), prev); err != nil {
			return err
		}
	}

	if sess.Cleared() || sess.Empty() {
		if !existing {
			return nil
		}
		if err := srv.store.Delete(r.Context(), sess.ID); err != nil {
			return err
		}
		http.SetCookie(w, srv.newCookie("", -1))
		return nil
	}

	if err := srv.store.Save(r.Context(), sess); err != nil {
		return err
	}
	http.SetCookie(w, srv.newCookie(sess.ID, 0))
	return nil
}

func (srv *Server) newCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     srv.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   srv.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
