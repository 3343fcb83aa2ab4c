package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// HTTPResult captures HTTP response details for test assertions
type HTTPResult struct {
	Code    int
	Headers http.Header
	Body    []byte
}

// Header represents an HTTP header key-value pair
type Header struct {
	Key   string
	Value string
}

// ExpectStatus validates the HTTP status code and fails the test if it doesn't match
func ExpectStatus(
	t *testing.T,
	expected int,
	result HTTPResult,
) {
	t.Helper()
	if result.Code != expected {
		t.Fatalf("expected status %d, got %d. Body: %s", expected, result.Code, string(result.Body))
	}
}

// ExpectRedirect validates a redirect response and returns the Location header
func ExpectRedirect(
	t *testing.T,
	result HTTPResult,
) string {
	t.Helper()
	if result.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect (303), got %d. Body: %s", result.Code, string(result.Body))
	}
	location := result.Headers.Get("Location")
	if location == "" {
		t.Fatal("expected Location header in redirect")
	}
	return location
}

// ExpectBodyContains fails unless the response body contains want.
func ExpectBodyContains(
	t *testing.T,
	result HTTPResult,
	want string,
) {
	t.Helper()
	if !strings.Contains(string(result.Body), want) {
		t.Fatalf("expected body to contain %q. Body: %s", want, string(result.Body))
	}
}

// SessionCookieOf extracts the session cookie set by a response, so a
// follow-up request can carry it. Fails if none was set.
func SessionCookieOf(
	t *testing.T,
	result HTTPResult,
) Header {
	t.Helper()
	res := http.Response{Header: result.Headers}
	for _, cookie := range res.Cookies() {
		if cookie.Value != "" && cookie.MaxAge >= 0 {
			return Header{Key: "Cookie", Value: cookie.Name + "=" + cookie.Value}
		}
	}
	t.Fatal("expected a session cookie in response")
	return Header{}
}

// Get performs a GET request against the router
func Get(
	router http.Handler,
	url string,
	headers ...Header,
) HTTPResult {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	res := httptest.NewRecorder()
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}
	router.ServeHTTP(res, req)

	return HTTPResult{Code: res.Code, Headers: res.Header(), Body: res.Body.Bytes()}
}

// PostForm performs a POST with a form-urlencoded body
func PostForm(
	router http.Handler,
	urlPath string,
	values url.Values,
	headers ...Header,
) HTTPResult {
	req := httptest.NewRequest(http.MethodPost, urlPath, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}
	router.ServeHTTP(res, req)

	return HTTPResult{Code: res.Code, Headers: res.Header(), Body: res.Body.Bytes()}
}
