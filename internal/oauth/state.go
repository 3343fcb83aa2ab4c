package oauth

import "crypto/rand"

// NewStateToken returns a fresh anti-CSRF state token. Each token is an
// unguessable 128-bit random string; a given token authorizes exactly one
// callback and must be stored as the session's pending state before the
// authorization redirect is issued.
func NewStateToken() string {
	return rand.Text()
}
