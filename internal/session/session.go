// Package session holds per-browser server-side state.
//
// A [Session] is loaded from a [Store] at the start of a request, handed explicitly to the handler, and
// saved (or deleted, once cleared) when the handler returns. Nothing else in the application persists.
//
// Lifecycle of the Spotify login:
//
//	Anonymous --BeginLogin--> PendingAuthorization --Authenticate--> Authenticated --Clear--> Anonymous
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/snaketracks/internal/shared"
	"golang.org/x/oauth2"
)

// Store persists sessions between requests.
type Store interface {
	// Load returns the session with id, or an error wrapping [shared.ErrSessionNotFound].
	Load(ctx context.Context, id string) (*Session, error)
	// Save creates or replaces the session.
	Save(ctx context.Context, s *Session) error
	// Delete removes the session; deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
	// Prune removes sessions not updated since before and returns how many were removed.
	Prune(ctx context.Context, before time.Time) (int, error)
}

// Profile is the Spotify profile snapshot captured once at login.
type Profile struct {
	ID          string
	DisplayName string
	AvatarURL   string
}

// Session is the server-held state for one browser.
type Session struct {
	ID        string    `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	OAuthState       string        `json:"oauth_state,omitempty"`
	Token            *oauth2.Token `json:"access_token,omitempty"`
	UserID           string        `json:"user_id,omitempty"`
	DisplayName      string        `json:"display_name,omitempty"`
	AvatarURL        string        `json:"avatar_url,omitempty"`
	ScrobbleUsername string        `json:"scrobble_username,omitempty"`

	cleared    bool
	previousID string
}

// New returns an empty session with a fresh random ID.
func New() *Session {
	now := time.Now().UTC()
	return &Session{ID: shared.GenerateID(), CreatedAt: now, UpdatedAt: now}
}

// Authenticated reports whether the session holds a Spotify token.
func (s *Session) Authenticated() bool {
	return s.Token != nil && s.Token.AccessToken != ""
}

// BeginLogin issues a fresh anti-forgery state, replacing any earlier one.
func (s *Session) BeginLogin() string {
	s.OAuthState = shared.GenerateID()
	return s.OAuthState
}

// ConsumeState returns the pending state and forgets it, so a state value is good for one callback.
func (s *Session) ConsumeState() string {
	state := s.OAuthState
	s.OAuthState = ""
	return state
}

// Authenticate stores the token bundle and profile snapshot from a completed login.
//
// The session ID is rotated so an identifier issued before login never names an authenticated session.
func (s *Session) Authenticate(token *oauth2.Token, profile Profile) {
	if s.previousID == "" {
		s.previousID = s.ID
	}
	s.ID = shared.GenerateID()
	s.Token = token
	s.UserID = profile.ID
	s.DisplayName = profile.DisplayName
	s.AvatarURL = profile.AvatarURL
}

// Clear drops every field. The store entry is deleted when the request finishes.
func (s *Session) Clear() {
	*s = Session{ID: s.ID, CreatedAt: s.CreatedAt, cleared: true, previousID: s.previousID}
}

// PreviousID is the ID the session was loaded under before [Session.Authenticate] rotated it, or "".
func (s *Session) PreviousID() string {
	return s.previousID
}

// Cleared reports whether [Session.Clear] was called during this request.
func (s *Session) Cleared() bool {
	return s.cleared
}

// Empty reports whether the session carries no state worth storing.
func (s *Session) Empty() bool {
	return s.OAuthState == "" && s.Token == nil && s.UserID == "" && s.DisplayName == "" &&
		s.AvatarURL == "" && s.ScrobbleUsername == ""
}

// Encode serializes the session fields (not the ID or timestamps).
func (s *Session) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return data, nil
}

// Decode rebuilds a session from data produced by [Session.Encode].
func Decode(id string, data []byte, createdAt, updatedAt time.Time) (*Session, error) {
	s := &Session{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	s.ID = id
	s.CreatedAt = createdAt
	s.UpdatedAt = updatedAt
	return s, nil
}
