// Package oauth implements the client half of the OAuth 2.0 authorization
// code grant: building the authorization redirect, validating the callback
// against the session's pending state, and exchanging codes and refresh
// tokens at the token endpoint.
package oauth

import (
	"errors"
	"fmt"
)

var (
	ErrStateMismatch  = errors.New("callback state mismatch")
	ErrExchangeFailed = errors.New("token exchange failed")
	ErrRefreshFailed  = errors.New("token refresh failed")
)

// DeniedError reports that the authorization server returned an error
// parameter on the callback, e.g. because the user declined the request.
type DeniedError struct {
	Code        string
	Description string
}

func (e *DeniedError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("authorization denied: %s", e.Code)
	}
	return fmt.Sprintf("authorization denied: %s: %s", e.Code, e.Description)
}

// Config is the immutable client registration this app was issued by the
// authorization server. It is loaded once at startup and injected into the
// components that need it; nothing mutates it afterward.
type Config struct {
	ClientID      string
	ClientSecret  string
	RedirectURI   string
	AuthServerURL string
	Scopes        []string
}
