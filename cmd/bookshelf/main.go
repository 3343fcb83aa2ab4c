package main

import (
	"log"
	"net/http"

	"git.sr.ht/~jakintosh/bookshelf/internal/app"
	"git.sr.ht/~jakintosh/bookshelf/internal/books"
	"git.sr.ht/~jakintosh/bookshelf/internal/config"
	"git.sr.ht/~jakintosh/bookshelf/internal/gateway"
	"git.sr.ht/~jakintosh/bookshelf/internal/oauth"
	"git.sr.ht/~jakintosh/bookshelf/internal/resources"
	"git.sr.ht/~jakintosh/bookshelf/internal/routing"
	"git.sr.ht/~jakintosh/bookshelf/internal/session"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("configuration error: %v\n", err)
	}

	store, err := session.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open session store: %v\n", err)
	}
	defer store.Close()

	render, err := resources.NewRenderer(cfg.TemplateDir)
	if err != nil {
		log.Fatalf("failed to load templates: %v\n", err)
	}

	oauthCfg := oauth.Config{
		ClientID:      cfg.ClientID,
		ClientSecret:  cfg.ClientSecret,
		RedirectURI:   cfg.RedirectURI,
		AuthServerURL: cfg.AuthServerURL,
		Scopes:        cfg.Scopes,
	}
	tokens := oauth.NewTokenClient(oauthCfg)
	sessions := session.NewManager(store)
	gw := gateway.New(tokens, sessions)
	booksClient := books.NewClient(gw, cfg.APIBaseURL)

	a := app.New(oauthCfg, tokens, sessions, booksClient, render)
	r := routing.BuildRouter(a)

	log.Printf("bookshelf client listening on :%s (auth server %s)\n", cfg.Port, cfg.AuthServerURL)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
