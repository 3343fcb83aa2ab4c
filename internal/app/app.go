// Package app holds the page handlers: the login/callback/logout flow and
// the authenticated dashboard, profile, and book views. Protocol errors
// are translated to the user-facing pages here; raw detail goes to the
// log only.
package app

import (
	"log/slog"
	"net/http"
	"time"

	"git.sr.ht/~jakintosh/bookshelf/internal/books"
	"git.sr.ht/~jakintosh/bookshelf/internal/oauth"
	"git.sr.ht/~jakintosh/bookshelf/internal/resources"
	"git.sr.ht/~jakintosh/bookshelf/internal/session"
)

var baseLogAttr = slog.String("component", "app")

type App struct {
	oauthCfg oauth.Config
	tokens   *oauth.TokenClient
	sessions *session.Manager
	books    *books.Client
	render   *resources.Renderer
	now      func() time.Time
}

func New(
	oauthCfg oauth.Config,
	tokens *oauth.TokenClient,
	sessions *session.Manager,
	booksClient *books.Client,
	render *resources.Renderer,
) *App {
	return &App{
		oauthCfg: oauthCfg,
		tokens:   tokens,
		sessions: sessions,
		books:    booksClient,
		render:   render,
		now:      time.Now,
	}
}

// loadSession resolves the request's session, answering 500 itself when
// the store fails. The bool reports whether the caller may proceed.
func (a *App) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := a.sessions.Load(w, r)
	if err != nil {
		slog.ErrorContext(r.Context(), "couldn't load session",
			baseLogAttr, slog.String("err", err.Error()))
		a.renderError(w, http.StatusInternalServerError, errorPage{
			Title:   "Server Error",
			Message: "Something went wrong. Please try again.",
		})
		return nil, false
	}
	return sess, true
}

// requireAuth resolves the session and redirects unauthenticated users to
// the login flow.
func (a *App) requireAuth(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := a.loadSession(w, r)
	if !ok {
		return nil, false
	}
	if !sess.Authenticated() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}
	return sess, true
}

type errorPage struct {
	Title   string
	Message string
}

func (a *App) renderError(w http.ResponseWriter, status int, page errorPage) {
	w.WriteHeader(status)
	if err := a.render.Render(w, "error.html", page); err != nil {
		slog.Error("error page rendering failed", baseLogAttr, slog.String("err", err.Error()))
	}
}

func (a *App) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	if err := a.render.Render(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "template rendering failed",
			baseLogAttr, slog.String("template", name), slog.String("err", err.Error()))
		http.Error(w, "Server Error", http.StatusInternalServerError)
	}
}

func (a *App) NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.renderError(w, http.StatusNotFound, errorPage{
			Title:   "Page Not Found",
			Message: "The page you're looking for doesn't exist.",
		})
	}
}
