package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"git.sr.ht/~jakintosh/bookshelf/internal/books"
)

// TokenGrant mirrors the token endpoint's request body.
type TokenGrant struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
	RefreshToken string `json:"refresh_token"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// FakeAuthServer stands in for the authorization server's token endpoint.
// Configure the behavior fields between requests, not concurrently with
// them.
type FakeAuthServer struct {
	// exchange response
	AccessToken  string
	RefreshToken string
	ExpiresIn    int

	// refresh response; an empty RotatedRefreshToken omits the field
	RefreshedAccessToken string
	RotatedRefreshToken  string

	FailExchange bool
	FailRefresh  bool

	srv *httptest.Server

	mu            sync.Mutex
	exchangeCalls int
	refreshCalls  int
	lastExchange  TokenGrant
	lastRefresh   TokenGrant
}

func NewFakeAuthServer(t *testing.T) *FakeAuthServer {
	t.Helper()
	s := &FakeAuthServer{
		AccessToken:          "AT1",
		RefreshToken:         "RT1",
		ExpiresIn:            3600,
		RefreshedAccessToken: "AT2",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", s.handleToken)
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *FakeAuthServer) URL() string { return s.srv.URL }

func (s *FakeAuthServer) ExchangeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exchangeCalls
}

func (s *FakeAuthServer) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// LastExchange returns the body of the most recent code exchange.
func (s *FakeAuthServer) LastExchange() TokenGrant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastExchange
}

// LastRefresh returns the body of the most recent refresh exchange.
func (s *FakeAuthServer) LastRefresh() TokenGrant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRefresh
}

func (s *FakeAuthServer) handleToken(w http.ResponseWriter, r *http.Request) {
	var grant TokenGrant
	if err := json.NewDecoder(r.Body).Decode(&grant); err != nil {
		oauthError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if grant.ClientID != "test-client" || grant.ClientSecret != "test-secret" {
		oauthError(w, http.StatusUnauthorized, "invalid_client")
		return
	}

	switch grant.GrantType {
	case "authorization_code":
		s.mu.Lock()
		s.exchangeCalls++
		s.lastExchange = grant
		s.mu.Unlock()

		if s.FailExchange || grant.Code == "" {
			oauthError(w, http.StatusBadRequest, "invalid_grant")
			return
		}
		tokenResponse(w, s.AccessToken, s.RefreshToken, s.ExpiresIn)

	case "refresh_token":
		s.mu.Lock()
		s.refreshCalls++
		s.lastRefresh = grant
		s.mu.Unlock()

		if s.FailRefresh || grant.RefreshToken == "" {
			oauthError(w, http.StatusBadRequest, "invalid_grant")
			return
		}
		tokenResponse(w, s.RefreshedAccessToken, s.RotatedRefreshToken, s.ExpiresIn)

	default:
		oauthError(w, http.StatusBadRequest, "unsupported_grant_type")
	}
}

func tokenResponse(w http.ResponseWriter, accessToken, refreshToken string, expiresIn int) {
	body := map[string]any{
		"access_token": accessToken,
		"expires_in":   expiresIn,
	}
	if refreshToken != "" {
		body["refresh_token"] = refreshToken
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func oauthError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, code)
}

// FakeResourceAPI stands in for the protected resource API. Requests must
// carry a bearer token previously registered with AllowToken; anything
// else gets a 401.
type FakeResourceAPI struct {
	Profile books.Profile

	srv *httptest.Server

	mu          sync.Mutex
	validTokens map[string]bool
	books       []books.Book
	meCalls     int
	listCalls   int
	createCalls int
}

func NewFakeResourceAPI(t *testing.T) *FakeResourceAPI {
	t.Helper()
	s := &FakeResourceAPI{
		Profile: books.Profile{
			ID:       "u-1",
			Username: "alice",
			Email:    "alice@example.com",
			Name:     "Alice Example",
		},
		validTokens: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/me", s.authorized(s.handleMe))
	mux.HandleFunc("GET /api/books", s.authorized(s.handleList))
	mux.HandleFunc("POST /api/books", s.authorized(s.handleCreate))
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *FakeResourceAPI) URL() string { return s.srv.URL }

func (s *FakeResourceAPI) AllowToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validTokens[token] = true
}

func (s *FakeResourceAPI) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.validTokens, token)
}

func (s *FakeResourceAPI) AddBook(book books.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = append(s.books, book)
}

func (s *FakeResourceAPI) Books() []books.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]books.Book(nil), s.books...)
}

// Calls returns how often each endpoint has been reached with a valid
// token, in the order me, list, create.
func (s *FakeResourceAPI) Calls() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meCalls, s.listCalls, s.createCalls
}

func (s *FakeResourceAPI) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if ok {
			s.mu.Lock()
			ok = s.validTokens[token]
			s.mu.Unlock()
		}
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		return "", false
	}
	return auth[len(prefix):], true
}

func (s *FakeResourceAPI) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.meCalls++
	s.mu.Unlock()
	returnJSON(w, s.Profile)
}

func (s *FakeResourceAPI) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.listCalls++
	list := append([]books.Book(nil), s.books...)
	s.mu.Unlock()
	if list == nil {
		list = []books.Book{}
	}
	returnJSON(w, list)
}

func (s *FakeResourceAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	var book books.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.createCalls++
	book.ID = fmt.Sprintf("b-%d", len(s.books)+1)
	s.books = append(s.books, book)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(book)
}

func returnJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}
