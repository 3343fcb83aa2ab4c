package oauth

import (
	"net/url"
	"strings"
)

// AuthorizeURL builds the authorization-server redirect URL for one login
// attempt. It is pure: the caller must persist state as the session's
// pending state before issuing the redirect.
func AuthorizeURL(cfg Config, state string) string {
	q := url.Values{}
	q.Set("client_id", cfg.ClientID)
	q.Set("redirect_uri", cfg.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(cfg.Scopes, " "))
	q.Set("state", state)

	return strings.TrimSuffix(cfg.AuthServerURL, "/") + "/oauth/authorize?" + q.Encode()
}
