package middleware

import (
	"context"
	"database/sql"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marknotes/db"
	"marknotes/models"
	"marknotes/store"
)

var (
	testDB       *sql.DB
	testUsers    *store.UserStore
	testSessions *store.SessionStore
	testAuth     *Authenticator
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "marknotes-middleware-test")
	if err != nil {
		log.Fatalf("create temp dir: %v", err)
	}

	testDB, err = db.Connect("sqlite", filepath.Join(dir, "test.db"))
	if err != nil {
		os.RemoveAll(dir)
		log.Fatalf("connect test db: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	testUsers = store.NewUserStore(testDB)
	testSessions = store.NewSessionStore(testDB)
	testAuth = NewAuthenticator(testSessions, testUsers, logger)

	code := m.Run()

	testDB.Close()
	os.RemoveAll(dir)
	os.Exit(code)
}

func createUserWithSession(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	user, err := testUsers.Create(context.Background(), username, "test-hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := testSessions.Create(context.Background(), user.ID, time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return user, token
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid token resolves the user", func(t *testing.T) {
		user, token := createUserWithSession(t, "mw-resolve-alice")
		got, err := testAuth.Resolve(ctx, token)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got == nil || got.ID != user.ID {
			t.Errorf("Expected user %d, got %+v", user.ID, got)
		}
	})

	t.Run("Unknown token is no identity, not an error", func(t *testing.T) {
		got, err := testAuth.Resolve(ctx, "no-such-token")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got != nil {
			t.Errorf("Expected no identity, got %+v", got)
		}
	})

	t.Run("Expired session is no identity", func(t *testing.T) {
		user, _ := createUserWithSession(t, "mw-resolve-expired")
		token := uuid.NewString()
		if _, err := testDB.Exec(
			`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
			token, user.ID, time.Now().Add(-time.Minute).UnixMilli(),
		); err != nil {
			t.Fatalf("insert expired session: %v", err)
		}

		got, err := testAuth.Resolve(ctx, token)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got != nil {
			t.Errorf("Expected no identity for expired session, got %+v", got)
		}
	})

	t.Run("Orphaned session is no identity", func(t *testing.T) {
		token := uuid.NewString()
		// sneak a session past the foreign key to simulate a user row that
		// disappeared out from under it
		testDB.Exec(`PRAGMA foreign_keys = OFF`)
		if _, err := testDB.Exec(
			`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, 0)`,
			token, int64(999999),
		); err != nil {
			t.Fatalf("insert orphaned session: %v", err)
		}
		testDB.Exec(`PRAGMA foreign_keys = ON`)

		got, err := testAuth.Resolve(ctx, token)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got != nil {
			t.Errorf("Expected no identity for orphaned session, got %+v", got)
		}
	})
}

func identityEchoHandler(t *testing.T, wantUser int64, wantToken string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			t.Error("Expected an identity in the request context")
			http.Error(w, "no identity", http.StatusInternalServerError)
			return
		}
		if id.User.ID != wantUser {
			t.Errorf("Expected user %d in context, got %d", wantUser, id.User.ID)
		}
		if id.Token != wantToken {
			t.Errorf("Expected token %q in context, got %q", wantToken, id.Token)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRequired(t *testing.T) {
	t.Run("Valid cookie passes with identity attached", func(t *testing.T) {
		user, token := createUserWithSession(t, "mw-required-alice")
		handler := testAuth.Auth(Required)(identityEchoHandler(t, user.ID, token))

		req := httptest.NewRequest("GET", "/note", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rr.Code)
		}
	})

	t.Run("Missing cookie redirects home", func(t *testing.T) {
		handler := testAuth.Auth(Required)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler must not run for unauthenticated required requests")
		}))

		req := httptest.NewRequest("GET", "/note", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusFound {
			t.Errorf("Expected 302, got %d", rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != "/" {
			t.Errorf("Expected redirect to /, got %q", loc)
		}
	})

	t.Run("Stale cookie redirects home", func(t *testing.T) {
		handler := testAuth.Auth(Required)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler must not run for a stale session")
		}))

		req := httptest.NewRequest("GET", "/note", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale-token"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusFound {
			t.Errorf("Expected 302, got %d", rr.Code)
		}
	})
}

func TestAuthOptional(t *testing.T) {
	t.Run("Anonymous request passes without identity", func(t *testing.T) {
		handler := testAuth.Auth(Optional)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IdentityFrom(r.Context()); ok {
				t.Error("Expected no identity for anonymous request")
			}
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rr.Code)
		}
	})

	t.Run("Valid cookie attaches identity", func(t *testing.T) {
		user, token := createUserWithSession(t, "mw-optional-alice")
		handler := testAuth.Auth(Optional)(identityEchoHandler(t, user.ID, token))

		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rr.Code)
		}
	})

	t.Run("Invalid cookie passes anonymously", func(t *testing.T) {
		handler := testAuth.Auth(Optional)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IdentityFrom(r.Context()); ok {
				t.Error("Expected no identity for an invalid token")
			}
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "nope"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rr.Code)
		}
	})
}
