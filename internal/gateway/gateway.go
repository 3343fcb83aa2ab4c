// Package gateway performs resource-API calls on behalf of an
// authenticated session: it attaches the session's bearer token and
// recovers from token expiry by refreshing and retrying once.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"git.sr.ht/~jakintosh/bookshelf/internal/oauth"
	"git.sr.ht/~jakintosh/bookshelf/internal/session"
)

var (
	// ErrAuthRequired means the session has no usable token or refresh
	// path left; it has been destroyed and the user must log in again.
	ErrAuthRequired = errors.New("authentication required")

	// ErrResubmitRequired means the token was refreshed but the original
	// request was not replayed because it is not idempotent; the caller
	// must re-submit it deliberately.
	ErrResubmitRequired = errors.New("token refreshed, request must be resubmitted")
)

var baseLogAttr = slog.String("component", "gateway")

// StatusError is a non-401 resource-API failure, surfaced unchanged to
// the caller. The session is untouched.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("resource API returned %d", e.StatusCode)
}

// Request describes one resource-API call. Body is a byte slice rather
// than a reader so the call can be replayed after a token refresh.
type Request struct {
	Method      string
	URL         string
	Body        []byte
	ContentType string
}

// Idempotent reports whether the request may be replayed blindly after a
// refresh. Only reads qualify; replaying a write without idempotency
// protection could apply it twice.
func (r Request) Idempotent() bool {
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}

// Gateway wraps resource-API calls with the session's bearer token.
type Gateway struct {
	tokens   *oauth.TokenClient
	sessions *session.Manager
	http     *http.Client
	now      func() time.Time
}

func New(tokens *oauth.TokenClient, sessions *session.Manager) *Gateway {
	return &Gateway{
		tokens:   tokens,
		sessions: sessions,
		http:     &http.Client{},
		now:      time.Now,
	}
}

// Do performs req with the session's access token and returns the
// response body.
//
// On a 401 it makes at most one refresh attempt: with no refresh token,
// or a failed refresh, or a second 401 after a successful refresh, the
// session is destroyed and ErrAuthRequired is returned. A successful
// refresh is committed to the session before any replay, and only
// idempotent requests are replayed; others return ErrResubmitRequired.
// Transport errors and non-401 statuses are surfaced unchanged.
func (g *Gateway) Do(
	ctx context.Context,
	w http.ResponseWriter,
	sess *session.Session,
	req Request,
) ([]byte, error) {
	status, body, err := g.send(ctx, req, sess.AccessToken)
	if err != nil {
		return nil, err
	}
	if status != http.StatusUnauthorized {
		return checkStatus(status, body)
	}

	if sess.RefreshToken == "" {
		slog.WarnContext(ctx, "401 with no refresh token, destroying session", baseLogAttr)
		return nil, g.failAuth(w, sess, nil)
	}

	slog.InfoContext(ctx, "access token rejected, refreshing", baseLogAttr)
	result, err := g.tokens.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		slog.WarnContext(ctx, "refresh failed, destroying session",
			baseLogAttr, slog.String("err", err.Error()))
		return nil, g.failAuth(w, sess, err)
	}

	sess.Commit(result, g.now())
	if err := g.sessions.Save(sess); err != nil {
		return nil, err
	}

	if !req.Idempotent() {
		return nil, ErrResubmitRequired
	}

	status, body, err = g.send(ctx, req, sess.AccessToken)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		// a token we just minted was rejected; don't loop
		slog.WarnContext(ctx, "refreshed token rejected, destroying session", baseLogAttr)
		return nil, g.failAuth(w, sess, nil)
	}
	return checkStatus(status, body)
}

func (g *Gateway) send(
	ctx context.Context,
	req Request,
	accessToken string,
) (int, []byte, error) {
	var reqBody io.Reader
	if len(req.Body) > 0 {
		reqBody = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, reqBody)
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	res, err := g.http.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, err
	}
	return res.StatusCode, body, nil
}

func (g *Gateway) failAuth(w http.ResponseWriter, sess *session.Session, cause error) error {
	if err := g.sessions.Destroy(w, sess); err != nil {
		slog.Error("failed to destroy session", baseLogAttr, slog.String("err", err.Error()))
	}
	if cause != nil {
		return fmt.Errorf("%w: %v", ErrAuthRequired, cause)
	}
	return ErrAuthRequired
}

func checkStatus(status int, body []byte) ([]byte, error) {
	if status < 200 || status > 299 {
		return nil, &StatusError{StatusCode: status, Body: body}
	}
	return body, nil
}
