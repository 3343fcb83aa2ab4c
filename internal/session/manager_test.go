package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"git.sr.ht/~jakintosh/bookshelf/internal/session"
)

func TestManager_LoadCreatesSession(t *testing.T) {
	t.Parallel()
	store := newStore(t)
	manager := session.NewManager(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	sess, err := manager.Load(res, req)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("new session has no id")
	}
	if sess.Authenticated() {
		t.Error("new session must be unauthenticated")
	}

	cookies := res.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != session.CookieName {
		t.Fatalf("expected a %s cookie, got %v", session.CookieName, cookies)
	}
	if cookies[0].Value != sess.ID {
		t.Errorf("cookie value = %s, want session id %s", cookies[0].Value, sess.ID)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	if _, err := store.Get(sess.ID); err != nil {
		t.Errorf("new session not persisted: %v", err)
	}
}

func TestManager_LoadExistingSession(t *testing.T) {
	t.Parallel()
	store := newStore(t)
	manager := session.NewManager(store)

	if err := store.Save(&session.Session{ID: "s1", AccessToken: "AT1"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "s1"})
	res := httptest.NewRecorder()

	sess, err := manager.Load(res, req)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sess.ID != "s1" || sess.AccessToken != "AT1" {
		t.Errorf("loaded session = %+v", sess)
	}
}

func TestManager_StaleCookieStartsOver(t *testing.T) {
	t.Parallel()
	store := newStore(t)
	manager := session.NewManager(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "gone"})
	res := httptest.NewRecorder()

	sess, err := manager.Load(res, req)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sess.ID == "gone" {
		t.Error("stale session id must not be reused")
	}
}

func TestManager_Destroy(t *testing.T) {
	t.Parallel()
	store := newStore(t)
	manager := session.NewManager(store)

	sess := &session.Session{ID: "s1", AccessToken: "AT1", RefreshToken: "RT1"}
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	res := httptest.NewRecorder()
	if err := manager.Destroy(res, sess); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}

	// fields wiped, row gone, cookie expired
	if sess.Authenticated() || sess.RefreshToken != "" || sess.PendingState != "" {
		t.Errorf("session not wiped: %+v", sess)
	}
	if _, err := store.Get("s1"); err == nil {
		t.Error("session row still present after destroy")
	}
	cookies := res.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Errorf("expected an expired cookie, got %v", cookies)
	}
}
