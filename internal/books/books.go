// Package books is the typed client for the protected resource API,
// built on the authenticated gateway.
package books

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"git.sr.ht/~jakintosh/bookshelf/internal/gateway"
	"git.sr.ht/~jakintosh/bookshelf/internal/session"
)

// Profile is the resource API's view of the logged-in user.
type Profile struct {
	// ID may be a string or a number depending on the server's backing
	// store, so it is left untyped for display.
	ID        any    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Book struct {
	ID            any    `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn,omitempty"`
	PublishedYear int    `json:"publishedYear,omitempty"`
	Description   string `json:"description,omitempty"`
}

// NewBook is the payload for creating a book. Title and Author are
// required; the handler validates before calling Create.
type NewBook struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn,omitempty"`
	PublishedYear int    `json:"publishedYear,omitempty"`
	Description   string `json:"description,omitempty"`
}

type Client struct {
	gw      *gateway.Gateway
	baseURL string
}

func NewClient(gw *gateway.Gateway, baseURL string) *Client {
	return &Client{gw: gw, baseURL: baseURL}
}

func (c *Client) Profile(
	ctx context.Context,
	w http.ResponseWriter,
	sess *session.Session,
) (*Profile, error) {
	return getJSON[Profile](ctx, c, w, sess, "/api/me")
}

func (c *Client) List(
	ctx context.Context,
	w http.ResponseWriter,
	sess *session.Session,
) ([]Book, error) {
	list, err := getJSON[[]Book](ctx, c, w, sess, "/api/books")
	if err != nil {
		return nil, err
	}
	return *list, nil
}

func (c *Client) Create(
	ctx context.Context,
	w http.ResponseWriter,
	sess *session.Session,
	book NewBook,
) error {
	body, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("couldn't encode book: %w", err)
	}

	_, err = c.gw.Do(ctx, w, sess, gateway.Request{
		Method:      http.MethodPost,
		URL:         c.baseURL + "/api/books",
		Body:        body,
		ContentType: "application/json",
	})
	return err
}

func getJSON[T any](
	ctx context.Context,
	c *Client,
	w http.ResponseWriter,
	sess *session.Session,
	path string,
) (*T, error) {
	body, err := c.gw.Do(ctx, w, sess, gateway.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + path,
	})
	if err != nil {
		return nil, err
	}

	result := new(T)
	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf("couldn't decode %s response: %w", path, err)
	}
	return result, nil
}
