package app

import (
	"errors"
	"log/slog"
	"net/http"

	"git.sr.ht/~jakintosh/bookshelf/internal/oauth"
)

func (a *App) Home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := a.loadSession(w, r)
		if !ok {
			return
		}
		if sess.Authenticated() {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		a.renderPage(w, r, "home.html", nil)
	}
}

// Login starts an authorization attempt: it binds a fresh state token to
// the session, then redirects the user to the authorization server. The
// pending state must be persisted before the redirect is issued.
func (a *App) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := a.loadSession(w, r)
		if !ok {
			return
		}

		state := oauth.NewStateToken()
		sess.StartLogin(state)
		if err := a.sessions.Save(sess); err != nil {
			slog.ErrorContext(r.Context(), "couldn't persist pending state",
				baseLogAttr, slog.String("err", err.Error()))
			a.renderError(w, http.StatusInternalServerError, errorPage{
				Title:   "Server Error",
				Message: "Something went wrong. Please try again.",
			})
			return
		}

		http.Redirect(w, r, oauth.AuthorizeURL(a.oauthCfg, state), http.StatusSeeOther)
	}
}

// Callback receives the authorization response. The pending state is
// consumed on every outcome, so replaying a callback fails closed.
func (a *App) Callback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := a.loadSession(w, r)
		if !ok {
			return
		}

		pending := sess.PendingState
		if pending != "" {
			sess.ClearPending()
			if err := a.sessions.Save(sess); err != nil {
				slog.ErrorContext(r.Context(), "couldn't clear pending state",
					baseLogAttr, slog.String("err", err.Error()))
			}
		}

		code, err := oauth.ValidateCallback(r.URL.Query(), pending)

		var denied *oauth.DeniedError
		switch {
		case errors.As(err, &denied):
			slog.InfoContext(r.Context(), "authorization denied",
				baseLogAttr, slog.String("code", denied.Code))
			a.renderPage(w, r, "denied.html", denied)
			return

		case errors.Is(err, oauth.ErrStateMismatch):
			slog.WarnContext(r.Context(), "callback state mismatch", baseLogAttr)
			a.renderError(w, http.StatusBadRequest, errorPage{
				Title:   "Bad Request",
				Message: "Invalid state parameter.",
			})
			return

		case err != nil:
			slog.ErrorContext(r.Context(), "callback validation failed",
				baseLogAttr, slog.String("err", err.Error()))
			a.renderError(w, http.StatusBadRequest, errorPage{
				Title:   "Bad Request",
				Message: "Invalid authorization response.",
			})
			return
		}

		result, err := a.tokens.ExchangeCode(r.Context(), code)
		if err != nil {
			slog.ErrorContext(r.Context(), "token exchange failed",
				baseLogAttr, slog.String("err", err.Error()))
			a.renderError(w, http.StatusInternalServerError, errorPage{
				Title:   "Login Failed",
				Message: "Failed to obtain access token. Please restart login.",
			})
			return
		}

		sess.Commit(result, a.now())
		if err := a.sessions.Save(sess); err != nil {
			slog.ErrorContext(r.Context(), "couldn't persist tokens",
				baseLogAttr, slog.String("err", err.Error()))
			a.renderError(w, http.StatusInternalServerError, errorPage{
				Title:   "Server Error",
				Message: "Something went wrong. Please try again.",
			})
			return
		}

		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}

func (a *App) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := a.loadSession(w, r)
		if !ok {
			return
		}
		if err := a.sessions.Destroy(w, sess); err != nil {
			slog.ErrorContext(r.Context(), "couldn't destroy session",
				baseLogAttr, slog.String("err", err.Error()))
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
