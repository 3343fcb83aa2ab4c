package session

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// CookieName is the browser cookie carrying the opaque session id.
const CookieName = "bookshelf_session"

// Manager resolves the browser's session cookie to a server-side session.
// It is injected wherever session access is needed; nothing reads the
// cookie or touches the store directly.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Load returns the request's session, creating and persisting a fresh one
// (and setting its cookie) when the request carries no usable session id.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		sess, err := m.store.Get(cookie.Value)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		// stale cookie; fall through and start over
	}

	sess := &Session{ID: uuid.NewString()}
	if err := m.store.Save(sess); err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:  CookieName,
		Path:  "/",
		Value: sess.ID,
		// Lax, not Strict: the authorization callback is a cross-site
		// redirect and must still carry the cookie.
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
	})
	return sess, nil
}

func (m *Manager) Save(sess *Session) error {
	return m.store.Save(sess)
}

// Destroy wipes the session's fields, removes it from the store, and
// expires the browser cookie. Used on logout and on unrecoverable
// authentication failure.
func (m *Manager) Destroy(w http.ResponseWriter, sess *Session) error {
	id := sess.ID
	*sess = Session{}

	http.SetCookie(w, &http.Cookie{
		Name:   CookieName,
		Path:   "/",
		MaxAge: -1,
	})
	return m.store.Delete(id)
}
