package app_test

import (
	"net/http"
	"net/url"
	"testing"

	"git.sr.ht/~jakintosh/bookshelf/internal/books"
	"git.sr.ht/~jakintosh/bookshelf/internal/testutil"
)

func TestDashboard_RequiresLogin(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	result := testutil.Get(env.Router, "/dashboard")
	if location := testutil.ExpectRedirect(t, result); location != "/login" {
		t.Errorf("redirect = %s, want /login", location)
	}
}

func TestDashboard_RendersProfileAndBooks(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	env.API.AllowToken("AT1")
	env.API.AddBook(books.Book{ID: "b-1", Title: "The Go Programming Language", Author: "Donovan"})
	_, cookie := env.NewAuthenticatedSession(t, "AT1", "RT1")

	result := testutil.Get(env.Router, "/dashboard", cookie)
	testutil.ExpectStatus(t, http.StatusOK, result)
	testutil.ExpectBodyContains(t, result, "alice")
	testutil.ExpectBodyContains(t, result, "The Go Programming Language")
}

func TestDashboard_RefreshesExpiredToken(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	// only the refreshed token is accepted by the API
	env.API.AllowToken("AT2")
	sess, cookie := env.NewAuthenticatedSession(t, "AT1", "RT1")

	result := testutil.Get(env.Router, "/dashboard", cookie)
	testutil.ExpectStatus(t, http.StatusOK, result)
	testutil.ExpectBodyContains(t, result, "alice")

	if calls := env.AuthServer.RefreshCalls(); calls != 1 {
		t.Errorf("refresh calls = %d, want 1", calls)
	}
	if grant := env.AuthServer.LastRefresh(); grant.RefreshToken != "RT1" {
		t.Errorf("refreshed with %s, want RT1", grant.RefreshToken)
	}

	stored, err := env.Store.Get(sess.ID)
	if err != nil {
		t.Fatalf("session lookup failed: %v", err)
	}
	if stored.AccessToken != "AT2" {
		t.Errorf("access token = %s, want AT2", stored.AccessToken)
	}
	if stored.RefreshToken != "RT1" {
		t.Errorf("refresh token = %s, want RT1 retained", stored.RefreshToken)
	}
}

func TestDashboard_RefreshFailureSendsBackToLogin(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	env.AuthServer.FailRefresh = true
	_, cookie := env.NewAuthenticatedSession(t, "stale", "RT1")

	result := testutil.Get(env.Router, "/dashboard", cookie)
	if location := testutil.ExpectRedirect(t, result); location != "/login" {
		t.Errorf("redirect = %s, want /login", location)
	}
}

func TestProfile_RendersAccountDetails(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	env.API.AllowToken("AT1")
	_, cookie := env.NewAuthenticatedSession(t, "AT1", "RT1")

	result := testutil.Get(env.Router, "/profile", cookie)
	testutil.ExpectStatus(t, http.StatusOK, result)
	testutil.ExpectBodyContains(t, result, "alice@example.com")
}

func TestCreateBook_Success(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	env.API.AllowToken("AT1")
	_, cookie := env.NewAuthenticatedSession(t, "AT1", "RT1")

	result := testutil.PostForm(env.Router, "/books", url.Values{
		"title":         {"Dune"},
		"author":        {"Frank Herbert"},
		"publishedYear": {"1965"},
	}, cookie)
	if location := testutil.ExpectRedirect(t, result); location != "/dashboard" {
		t.Errorf("redirect = %s, want /dashboard", location)
	}

	list := env.API.Books()
	if len(list) != 1 {
		t.Fatalf("books = %d, want 1", len(list))
	}
	if list[0].Title != "Dune" || list[0].Author != "Frank Herbert" || list[0].PublishedYear != 1965 {
		t.Errorf("stored book = %+v", list[0])
	}
}

func TestCreateBook_MissingFields(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	env.API.AllowToken("AT1")
	_, cookie := env.NewAuthenticatedSession(t, "AT1", "RT1")

	for _, form := range []url.Values{
		{"author": {"Frank Herbert"}},
		{"title": {"Dune"}},
		{},
	} {
		result := testutil.PostForm(env.Router, "/books", form, cookie)
		testutil.ExpectStatus(t, http.StatusBadRequest, result)
	}

	if _, _, creates := env.API.Calls(); creates != 0 {
		t.Errorf("create calls = %d, want 0", creates)
	}
}

func TestCreateBook_RefreshAsksForResubmit(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	// the write's token is stale; after the refresh the form data must not
	// be replayed automatically
	env.API.AllowToken("AT2")
	sess, cookie := env.NewAuthenticatedSession(t, "AT1", "RT1")

	result := testutil.PostForm(env.Router, "/books", url.Values{
		"title":  {"Dune"},
		"author": {"Frank Herbert"},
	}, cookie)
	if location := testutil.ExpectRedirect(t, result); location != "/dashboard?notice=resubmit" {
		t.Errorf("redirect = %s, want /dashboard?notice=resubmit", location)
	}

	if _, _, creates := env.API.Calls(); creates != 0 {
		t.Errorf("create calls = %d, want 0 without resubmission", creates)
	}
	if len(env.API.Books()) != 0 {
		t.Error("no book may be stored without resubmission")
	}

	// the refreshed token is kept, so the resubmission will succeed
	stored, err := env.Store.Get(sess.ID)
	if err != nil {
		t.Fatalf("session lookup failed: %v", err)
	}
	if stored.AccessToken != "AT2" {
		t.Errorf("access token = %s, want AT2", stored.AccessToken)
	}

	notice := testutil.Get(env.Router, "/dashboard?notice=resubmit", cookie)
	testutil.ExpectStatus(t, http.StatusOK, notice)
	testutil.ExpectBodyContains(t, notice, "submit the book again")
}
