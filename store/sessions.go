package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"marknotes/models"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Create issues a fresh opaque session token for the user. A zero ttl
// produces a session without expiry.
func (s *SessionStore) Create(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	token := uuid.NewString()

	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixMilli()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return token, nil
}

// Get looks up a session by token. Expired sessions are deleted on sight
// and reported as ErrSessionNotFound, same as missing ones.
func (s *SessionStore) Get(ctx context.Context, token string) (*models.Session, error) {
	var sess models.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at FROM sessions WHERE token = ?`,
		token,
	).Scan(&sess.Token, &sess.UserID, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if sess.ExpiresAt > 0 && sess.ExpiresAt <= time.Now().UnixMilli() {
		if err := s.Delete(ctx, token); err != nil {
			return nil, err
		}
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

// Delete removes a session by token. Deleting an absent token is not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
