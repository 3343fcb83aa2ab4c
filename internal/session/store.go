package session

import "errors"

var ErrNotFound = errors.New("session not found")

// Store handles persistence of sessions keyed by session id.
type Store interface {
	Get(id string) (*Session, error)
	Save(session *Session) error
	Delete(id string) error
}
