package oauth_test

import (
	"context"
	"errors"
	"testing"

	"git.sr.ht/~jakintosh/bookshelf/internal/oauth"
	"git.sr.ht/~jakintosh/bookshelf/internal/testutil"
)

func newTokenClient(t *testing.T) (*oauth.TokenClient, *testutil.FakeAuthServer) {
	t.Helper()
	server := testutil.NewFakeAuthServer(t)
	cfg := testConfig
	cfg.AuthServerURL = server.URL()
	return oauth.NewTokenClient(cfg), server
}

func TestExchangeCode_Success(t *testing.T) {
	t.Parallel()
	client, server := newTokenClient(t)

	result, err := client.ExchangeCode(context.Background(), "ABC")
	if err != nil {
		t.Fatalf("ExchangeCode failed: %v", err)
	}
	if result.AccessToken != "AT1" {
		t.Errorf("access token = %s, want AT1", result.AccessToken)
	}
	if result.RefreshToken != "RT1" {
		t.Errorf("refresh token = %s, want RT1", result.RefreshToken)
	}
	if result.ExpiresIn != 3600 {
		t.Errorf("expires_in = %d, want 3600", result.ExpiresIn)
	}

	grant := server.LastExchange()
	if grant.GrantType != "authorization_code" {
		t.Errorf("grant_type = %s", grant.GrantType)
	}
	if grant.Code != "ABC" {
		t.Errorf("code = %s, want ABC", grant.Code)
	}
	if grant.RedirectURI != testConfig.RedirectURI {
		t.Errorf("redirect_uri = %s", grant.RedirectURI)
	}
	if grant.RefreshToken != "" {
		t.Errorf("code exchange must not carry a refresh token, got %s", grant.RefreshToken)
	}
}

func TestExchangeCode_ServerRejects(t *testing.T) {
	t.Parallel()
	client, server := newTokenClient(t)
	server.FailExchange = true

	_, err := client.ExchangeCode(context.Background(), "ABC")
	if !errors.Is(err, oauth.ErrExchangeFailed) {
		t.Errorf("expected ErrExchangeFailed, got %v", err)
	}
}

func TestExchangeCode_MalformedResponse(t *testing.T) {
	t.Parallel()
	client, server := newTokenClient(t)
	server.AccessToken = "" // success status but no usable token

	_, err := client.ExchangeCode(context.Background(), "ABC")
	if !errors.Is(err, oauth.ErrExchangeFailed) {
		t.Errorf("expected ErrExchangeFailed, got %v", err)
	}
}

func TestExchangeCode_Unreachable(t *testing.T) {
	t.Parallel()

	cfg := testConfig
	cfg.AuthServerURL = "http://127.0.0.1:1"
	client := oauth.NewTokenClient(cfg)

	_, err := client.ExchangeCode(context.Background(), "ABC")
	if !errors.Is(err, oauth.ErrExchangeFailed) {
		t.Errorf("transport failure should map to ErrExchangeFailed, got %v", err)
	}
}

func TestRefresh_Success(t *testing.T) {
	t.Parallel()
	client, server := newTokenClient(t)
	server.RotatedRefreshToken = "RT2"

	result, err := client.Refresh(context.Background(), "RT1")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if result.AccessToken != "AT2" {
		t.Errorf("access token = %s, want AT2", result.AccessToken)
	}
	if result.RefreshToken != "RT2" {
		t.Errorf("refresh token = %s, want RT2", result.RefreshToken)
	}

	grant := server.LastRefresh()
	if grant.GrantType != "refresh_token" {
		t.Errorf("grant_type = %s", grant.GrantType)
	}
	if grant.RefreshToken != "RT1" {
		t.Errorf("refresh_token = %s, want RT1", grant.RefreshToken)
	}
	if grant.Code != "" || grant.RedirectURI != "" {
		t.Error("refresh grant must not carry code exchange fields")
	}
}

func TestRefresh_NoRotation(t *testing.T) {
	t.Parallel()
	client, _ := newTokenClient(t)

	// server omits refresh_token: result carries none, caller keeps the old
	result, err := client.Refresh(context.Background(), "RT1")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if result.RefreshToken != "" {
		t.Errorf("expected empty refresh token, got %s", result.RefreshToken)
	}
}

func TestRefresh_ServerRejects(t *testing.T) {
	t.Parallel()
	client, server := newTokenClient(t)
	server.FailRefresh = true

	_, err := client.Refresh(context.Background(), "RT1")
	if !errors.Is(err, oauth.ErrRefreshFailed) {
		t.Errorf("expected ErrRefreshFailed, got %v", err)
	}
	if errors.Is(err, oauth.ErrExchangeFailed) {
		t.Error("refresh failure must be distinct from exchange failure")
	}
}
