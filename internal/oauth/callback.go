package oauth

import (
	"crypto/subtle"
	"net/url"
)

// ValidateCallback checks the query parameters of an authorization
// response against the session's pending state and returns the
// authorization code to exchange.
//
// A callback carrying an error parameter returns a *DeniedError before any
// state comparison. A state that does not exactly match pendingState,
// including when no pending state exists, returns ErrStateMismatch; no
// exchange must be attempted in that case. The caller must clear the
// pending state on every outcome, so a replayed state fails closed as a
// mismatch.
func ValidateCallback(query url.Values, pendingState string) (string, error) {
	if errCode := query.Get("error"); errCode != "" {
		return "", &DeniedError{
			Code:        errCode,
			Description: query.Get("error_description"),
		}
	}

	state := query.Get("state")
	if pendingState == "" || !stateEqual(state, pendingState) {
		return "", ErrStateMismatch
	}

	return query.Get("code"), nil
}

func stateEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
