package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const tokenRequestTimeout = 10 * time.Second

// TokenResult is the outcome of a successful token-endpoint exchange. It
// is ephemeral: the session store consumes it immediately via commit.
type TokenResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// TokenClient performs the code-for-token and refresh-token-for-token
// exchanges against the authorization server's token endpoint.
type TokenClient struct {
	cfg  Config
	http *http.Client
}

func NewTokenClient(cfg Config) *TokenClient {
	return &TokenClient{
		cfg:  cfg,
		http: &http.Client{Timeout: tokenRequestTimeout},
	}
}

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// ExchangeCode trades an authorization code for a token pair. Failure is
// reported as ErrExchangeFailed and is fatal for the login attempt: the
// code is consumed server-side, so a failed exchange must never be
// retried with the same code.
func (c *TokenClient) ExchangeCode(ctx context.Context, code string) (*TokenResult, error) {
	return c.requestToken(ctx, tokenRequest{
		GrantType:    "authorization_code",
		Code:         code,
		RedirectURI:  c.cfg.RedirectURI,
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
	}, ErrExchangeFailed)
}

// Refresh trades a refresh token for a new token pair. The result's
// RefreshToken may be empty when the server does not rotate; the caller
// must keep the previous refresh token in that case. Failure is reported
// as ErrRefreshFailed so callers can destroy the session rather than
// restart the exchange.
func (c *TokenClient) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	return c.requestToken(ctx, tokenRequest{
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
	}, ErrRefreshFailed)
}

func (c *TokenClient) requestToken(
	ctx context.Context,
	request tokenRequest,
	kind error,
) (*TokenResult, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't encode request: %v", kind, err)
	}

	url := c.cfg.AuthServerURL + "/oauth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't build request: %v", kind, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kind, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("%w: token endpoint returned %d: %s", kind, res.StatusCode, detail)
	}

	var response tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: couldn't decode response: %v", kind, err)
	}
	if response.AccessToken == "" || response.ExpiresIn <= 0 {
		return nil, fmt.Errorf("%w: response missing access_token or expires_in", kind)
	}

	return &TokenResult{
		AccessToken:  response.AccessToken,
		RefreshToken: response.RefreshToken,
		ExpiresIn:    response.ExpiresIn,
	}, nil
}
