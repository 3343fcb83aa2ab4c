package app

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"git.sr.ht/~jakintosh/bookshelf/internal/books"
	"git.sr.ht/~jakintosh/bookshelf/internal/gateway"
)

type dashboardPage struct {
	Profile *books.Profile
	Books   []books.Book
	Notice  string
}

func (a *App) Dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := a.requireAuth(w, r)
		if !ok {
			return
		}

		profile, err := a.books.Profile(r.Context(), w, sess)
		if err != nil {
			a.handleAPIError(w, r, err, "dashboard profile fetch")
			return
		}

		list, err := a.books.List(r.Context(), w, sess)
		if err != nil {
			a.handleAPIError(w, r, err, "dashboard book fetch")
			return
		}

		a.renderPage(w, r, "dashboard.html", dashboardPage{
			Profile: profile,
			Books:   list,
			Notice:  noticeText(r.URL.Query().Get("notice")),
		})
	}
}

func (a *App) Profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := a.requireAuth(w, r)
		if !ok {
			return
		}

		profile, err := a.books.Profile(r.Context(), w, sess)
		if err != nil {
			a.handleAPIError(w, r, err, "profile fetch")
			return
		}

		a.renderPage(w, r, "profile.html", profile)
	}
}

// CreateBook accepts the add-book form. If the call hit a 401 and the
// token was refreshed, the write is not replayed automatically; the user
// is sent back to the dashboard with a resubmit notice instead.
func (a *App) CreateBook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := a.requireAuth(w, r)
		if !ok {
			return
		}

		if err := r.ParseForm(); err != nil {
			a.renderError(w, http.StatusBadRequest, errorPage{
				Title:   "Bad Request",
				Message: "Couldn't read the submitted form.",
			})
			return
		}

		title := r.PostFormValue("title")
		author := r.PostFormValue("author")
		if title == "" || author == "" {
			a.renderError(w, http.StatusBadRequest, errorPage{
				Title:   "Missing Fields",
				Message: "Title and author are required fields.",
			})
			return
		}

		year, _ := strconv.Atoi(r.PostFormValue("publishedYear"))
		book := books.NewBook{
			Title:         title,
			Author:        author,
			ISBN:          r.PostFormValue("isbn"),
			PublishedYear: year,
			Description:   r.PostFormValue("description"),
		}

		err := a.books.Create(r.Context(), w, sess, book)
		switch {
		case errors.Is(err, gateway.ErrResubmitRequired):
			http.Redirect(w, r, "/dashboard?notice=resubmit", http.StatusSeeOther)
		case err != nil:
			a.handleAPIError(w, r, err, "book creation")
		default:
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		}
	}
}

// handleAPIError maps gateway failures to user outcomes: lost
// authentication goes back to login, anything else gets the generic
// failure page with the detail logged for operators.
func (a *App) handleAPIError(w http.ResponseWriter, r *http.Request, err error, during string) {
	if errors.Is(err, gateway.ErrAuthRequired) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	attrs := []any{baseLogAttr, slog.String("during", during), slog.String("err", err.Error())}
	var status *gateway.StatusError
	if errors.As(err, &status) {
		attrs = append(attrs, slog.Int("status", status.StatusCode))
	}
	slog.ErrorContext(r.Context(), "resource API call failed", attrs...)

	a.renderError(w, http.StatusInternalServerError, errorPage{
		Title:   "Server Error",
		Message: "There was an error loading this page. Please try again.",
	})
}

func noticeText(key string) string {
	if key == "resubmit" {
		return "Your login was refreshed while saving. Please submit the book again."
	}
	return ""
}
