package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"marknotes/models"
)

// PageSize is the fixed number of notes per page in paginated listings.
const PageSize = 10

const dayMillis = int64(24 * time.Hour / time.Millisecond)

const noteColumns = "id, user_id, title, text, created, is_active, is_archived"

type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

// Create inserts a note and fills in its generated id.
func (s *NoteStore) Create(ctx context.Context, note *models.Note) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (user_id, title, text, created, is_active, is_archived) VALUES (?, ?, ?, ?, ?, ?)`,
		note.UserID, note.Title, note.Text, note.Created, note.IsActive, note.IsArchived,
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("note last insert id: %w", err)
	}
	note.ID = id
	return nil
}

// Search matches the term case-insensitively against note titles. Each hit
// gets a Highlights variant of the title with the matched spans wrapped in
// <mark> tags.
func (s *NoteStore) Search(ctx context.Context, userID int64, term string) ([]models.Note, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? AND LOWER(title) LIKE ? ESCAPE '!' ORDER BY created DESC`,
		userID, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	notes, err := collectNotes(rows)
	if err != nil {
		return nil, err
	}

	re := regexp.MustCompile(`(?i)(` + regexp.QuoteMeta(term) + `)`)
	for i := range notes {
		notes[i].Highlights = re.ReplaceAllString(notes[i].Title, "<mark>$1</mark>")
	}
	return notes, nil
}

// ListByAge filters by time bucket: 1month/3months keep unarchived notes
// created within the last 30/90 days, alltime keeps all unarchived notes,
// archive keeps archived ones only. Any other bucket returns every note.
func (s *NoteStore) ListByAge(ctx context.Context, userID int64, bucket string) ([]models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = ?`
	args := []any{userID}

	now := time.Now().UnixMilli()
	switch bucket {
	case "1month":
		query += ` AND created >= ? AND is_archived = ?`
		args = append(args, now-30*dayMillis, false)
	case "3months":
		query += ` AND created >= ? AND is_archived = ?`
		args = append(args, now-90*dayMillis, false)
	case "alltime":
		query += ` AND is_archived = ?`
		args = append(args, false)
	case "archive":
		query += ` AND is_archived = ?`
		args = append(args, true)
	}
	query += ` ORDER BY created DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes by age: %w", err)
	}
	return collectNotes(rows)
}

// ListPage returns the 1-indexed page of the user's notes, newest first.
func (s *NoteStore) ListPage(ctx context.Context, userID int64, page int) ([]models.Note, error) {
	if page < 1 {
		page = 1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? ORDER BY created DESC LIMIT ? OFFSET ?`,
		userID, PageSize, (page-1)*PageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes page: %w", err)
	}
	return collectNotes(rows)
}

// ListActive is the default listing: the user's unarchived notes.
func (s *NoteStore) ListActive(ctx context.Context, userID int64) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? AND is_archived = ? ORDER BY created DESC`,
		userID, false,
	)
	if err != nil {
		return nil, fmt.Errorf("list active notes: %w", err)
	}
	return collectNotes(rows)
}

// GetByID fetches a single note scoped to its owner. Foreign and missing
// ids are indistinguishable: both yield ErrNoteNotFound.
func (s *NoteStore) GetByID(ctx context.Context, userID, noteID int64) (*models.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND user_id = ?`,
		noteID, userID,
	)
	var note models.Note
	if err := scanNote(row.Scan, &note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("scan note: %w", err)
	}
	return &note, nil
}

// SetArchived updates the archive flag and its complementary active flag,
// returning the post-update record. Repeating the same state is a no-op,
// not an error.
func (s *NoteStore) SetArchived(ctx context.Context, userID, noteID int64, archived bool) (*models.Note, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notes SET is_archived = ?, is_active = ? WHERE id = ? AND user_id = ?`,
		archived, !archived, noteID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("archive note: %w", err)
	}
	// existence check via re-read: RowsAffected is unreliable for no-op
	// updates on mysql
	return s.GetByID(ctx, userID, noteID)
}

// UpdateContent replaces a note's title and text.
func (s *NoteStore) UpdateContent(ctx context.Context, userID, noteID int64, title, text string) (*models.Note, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, text = ? WHERE id = ? AND user_id = ?`,
		title, text, noteID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return s.GetByID(ctx, userID, noteID)
}

// Delete removes a single owned note, reporting ErrNoteNotFound when the
// id does not resolve within the user's scope.
func (s *NoteStore) Delete(ctx context.Context, userID, noteID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`,
		noteID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// DeleteArchived removes all of the user's archived notes and returns how
// many were deleted.
func (s *NoteStore) DeleteArchived(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE user_id = ? AND is_archived = ?`,
		userID, true,
	)
	if err != nil {
		return 0, fmt.Errorf("delete archived notes: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete archived rows affected: %w", err)
	}
	return affected, nil
}

func scanNote(scan func(dest ...any) error, note *models.Note) error {
	return scan(&note.ID, &note.UserID, &note.Title, &note.Text, &note.Created, &note.IsActive, &note.IsArchived)
}

func collectNotes(rows *sql.Rows) ([]models.Note, error) {
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var note models.Note
		if err := scanNote(rows.Scan, &note); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

// LIKE wildcards in user input are literals; '!' is the escape character in
// the search query.
func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
