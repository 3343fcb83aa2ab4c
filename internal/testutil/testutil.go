// Package testutil provides test environment setup and utilities for
// internal package tests: an isolated app wired against fake
// authorization and resource servers.
package testutil

import (
	"net/http"
	"path/filepath"
	"runtime"
	"testing"

	"git.sr.ht/~jakintosh/bookshelf/internal/app"
	"git.sr.ht/~jakintosh/bookshelf/internal/books"
	"git.sr.ht/~jakintosh/bookshelf/internal/gateway"
	"git.sr.ht/~jakintosh/bookshelf/internal/oauth"
	"git.sr.ht/~jakintosh/bookshelf/internal/resources"
	"git.sr.ht/~jakintosh/bookshelf/internal/routing"
	"git.sr.ht/~jakintosh/bookshelf/internal/session"
)

// TestEnv provides all dependencies needed for testing
type TestEnv struct {
	Store      *session.SQLiteStore
	Sessions   *session.Manager
	Tokens     *oauth.TokenClient
	Gateway    *gateway.Gateway
	Books      *books.Client
	Router     http.Handler
	AuthServer *FakeAuthServer
	API        *FakeResourceAPI
	OAuthCfg   oauth.Config
}

// SetupTestEnv creates an isolated environment: in-memory SQLite session
// store, a fake authorization server, and a fake resource API.
func SetupTestEnv(
	t *testing.T,
) *TestEnv {
	t.Helper()

	store, err := session.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to open session store: %v", err)
	}

	authServer := NewFakeAuthServer(t)
	api := NewFakeResourceAPI(t)

	cfg := oauth.Config{
		ClientID:      "test-client",
		ClientSecret:  "test-secret",
		RedirectURI:   "http://client.local/auth/callback",
		AuthServerURL: authServer.URL(),
		Scopes:        []string{"read:profile", "read:books", "write:books"},
	}

	tokens := oauth.NewTokenClient(cfg)
	sessions := session.NewManager(store)
	gw := gateway.New(tokens, sessions)
	booksClient := books.NewClient(gw, api.URL())

	render, err := resources.NewRenderer(templatesDir())
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}

	a := app.New(cfg, tokens, sessions, booksClient, render)

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestEnv{
		Store:      store,
		Sessions:   sessions,
		Tokens:     tokens,
		Gateway:    gw,
		Books:      booksClient,
		Router:     routing.BuildRouter(a),
		AuthServer: authServer,
		API:        api,
		OAuthCfg:   cfg,
	}
}

// NewAuthenticatedSession stores a session holding the given token pair
// and returns it along with its Cookie header value.
func (env *TestEnv) NewAuthenticatedSession(
	t *testing.T,
	accessToken string,
	refreshToken string,
) (*session.Session, Header) {
	t.Helper()
	sess := &session.Session{
		ID:           "test-session",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	if err := env.Store.Save(sess); err != nil {
		t.Fatalf("failed to store test session: %v", err)
	}
	return sess, SessionCookie(sess.ID)
}

// SessionCookie builds a request Cookie header for a session id.
func SessionCookie(id string) Header {
	return Header{
		Key:   "Cookie",
		Value: session.CookieName + "=" + id,
	}
}

// templatesDir returns the path to web/templates relative to this file.
func templatesDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "web", "templates")
}
