package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"marknotes/models"
	"marknotes/store"
)

// SessionCookie is the http-only cookie carrying the session token.
const SessionCookie = "sessionId"

// Mode selects how a route treats unauthenticated requests.
type Mode int

const (
	// Optional lets the request through anonymously when no identity resolves.
	Optional Mode = iota
	// Required redirects unauthenticated requests home before any handler runs.
	Required
)

// Identity is the resolved caller attached to the request context. Token is
// kept so logout can delete the exact session it arrived on.
type Identity struct {
	User  *models.User
	Token string
}

type ctxKey int

const identityKey ctxKey = 0

// WithIdentity returns a context carrying the resolved identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom retrieves the identity placed by the Auth middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

type Authenticator struct {
	sessions *store.SessionStore
	users    *store.UserStore
	log      *logrus.Logger
}

func NewAuthenticator(sessions *store.SessionStore, users *store.UserStore, log *logrus.Logger) *Authenticator {
	return &Authenticator{sessions: sessions, users: users, log: log}
}

// Resolve maps a session token to its user. A missing or expired session,
// or a session whose user record is gone, yields (nil, nil): absence of
// identity is a state, not an error. Store failures propagate.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*models.User, error) {
	sess, err := a.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, err := a.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// orphaned session
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Auth resolves the session cookie to an identity and enforces the given
// mode before the wrapped handler runs.
func (a *Authenticator) Auth(mode Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				a.deny(mode, next, w, r)
				return
			}

			user, err := a.Resolve(r.Context(), cookie.Value)
			if err != nil {
				a.log.Errorf("auth middleware: resolve session: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				a.deny(mode, next, w, r)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{User: user, Token: cookie.Value})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *Authenticator) deny(mode Mode, next http.Handler, w http.ResponseWriter, r *http.Request) {
	if mode == Required {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	next.ServeHTTP(w, r)
}
