// Package session owns the OAuth session state for each user: the pending
// anti-CSRF state, the current token pair, and its expiry. Sessions are
// held server-side in SQLite and referenced from the browser by an opaque
// cookie; the session is the only place token lifecycle state lives.
package session

import (
	"time"

	"git.sr.ht/~jakintosh/bookshelf/internal/oauth"
)

// Session is the per-user OAuth state. A session with no access token is
// unauthenticated regardless of any other field.
type Session struct {
	ID string

	// PendingState is present only between redirect-issuance and
	// callback-receipt; it is consumed exactly once.
	PendingState string

	AccessToken    string
	RefreshToken   string
	TokenExpiresAt time.Time
}

func (s *Session) Authenticated() bool {
	return s.AccessToken != ""
}

func (s *Session) SetPending(state string) {
	s.PendingState = state
}

func (s *Session) ClearPending() {
	s.PendingState = ""
}

// StartLogin records a fresh pending state and drops any tokens from a
// previous authentication: a session never holds both a pending state and
// an access token.
func (s *Session) StartLogin(state string) {
	s.AccessToken = ""
	s.RefreshToken = ""
	s.TokenExpiresAt = time.Time{}
	s.PendingState = state
}

// Commit writes a successful exchange result into the session. The expiry
// is exactly now + expires_in. A result with no refresh token keeps the
// previously stored one: the server declined to rotate, so the old token
// remains valid.
func (s *Session) Commit(result *oauth.TokenResult, now time.Time) {
	s.AccessToken = result.AccessToken
	if result.RefreshToken != "" {
		s.RefreshToken = result.RefreshToken
	}
	s.TokenExpiresAt = now.Add(time.Duration(result.ExpiresIn) * time.Second)
}
