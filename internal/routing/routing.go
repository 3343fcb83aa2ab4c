// Package routing assembles the application's router.
package routing

import (
	"net/http"

	"git.sr.ht/~jakintosh/bookshelf/internal/app"
	"github.com/gorilla/mux"
)

func BuildRouter(a *app.App) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", a.Home()).Methods(http.MethodGet)
	r.HandleFunc("/login", a.Login()).Methods(http.MethodGet)
	r.HandleFunc("/auth/callback", a.Callback()).Methods(http.MethodGet)
	r.HandleFunc("/dashboard", a.Dashboard()).Methods(http.MethodGet)
	r.HandleFunc("/profile", a.Profile()).Methods(http.MethodGet)
	r.HandleFunc("/books", a.CreateBook()).Methods(http.MethodPost)
	r.HandleFunc("/logout", a.Logout()).Methods(http.MethodGet)

	r.NotFoundHandler = a.NotFound()

	return r
}
