// Package store provides the persistence layer. Every note operation takes
// the owning user's id and filters by it; callers never pass client-supplied
// user ids.
package store

import "errors"

var (
	// ErrUserNotFound is returned when a user lookup matches no record.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound is returned for missing or expired session tokens.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoteNotFound is returned when a note is absent or owned by someone else.
	ErrNoteNotFound = errors.New("note not found")
	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
)
