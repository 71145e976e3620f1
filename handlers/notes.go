package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"marknotes/models"
	"marknotes/store"
)

// ListNotes serves GET /note. Exactly one query mode applies per request,
// picked by which parameter is present: search > age > page > id > default.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	ctx := r.Context()

	var (
		notes []models.Note
		err   error
	)
	switch {
	case q.Get("search") != "":
		notes, err = h.notes.Search(ctx, id.User.ID, q.Get("search"))
	case q.Get("age") != "":
		notes, err = h.notes.ListByAge(ctx, id.User.ID, q.Get("age"))
	case q.Get("page") != "":
		page, convErr := strconv.Atoi(q.Get("page"))
		if convErr != nil {
			page = 1
		}
		notes, err = h.notes.ListPage(ctx, id.User.ID, page)
	case q.Get("id") != "":
		noteID, convErr := strconv.ParseInt(q.Get("id"), 10, 64)
		if convErr != nil {
			notFoundJSON(w)
			return
		}
		note, getErr := h.notes.GetByID(ctx, id.User.ID, noteID)
		if getErr != nil {
			if errors.Is(getErr, store.ErrNoteNotFound) {
				notFoundJSON(w)
				return
			}
			h.serverError(w, "list notes: fetch by id", getErr)
			return
		}
		writeJSON(w, http.StatusOK, note)
		return
	default:
		notes, err = h.notes.ListActive(ctx, id.User.ID)
	}
	if err != nil {
		h.serverError(w, "list notes", err)
		return
	}

	writeJSON(w, http.StatusOK, notes)
}

// GetNote serves GET /note/{id}: an ownership-scoped fetch. Ids that do not
// resolve within the user's notes are a 404, never someone else's content.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	noteID, err := pathNoteID(r)
	if err != nil {
		notFoundJSON(w)
		return
	}

	note, err := h.notes.GetByID(r.Context(), id.User.ID, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			notFoundJSON(w)
			return
		}
		h.serverError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote serves POST /new.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Title == "" && req.Text == "" {
		badRequest(w, "title or text is required")
		return
	}

	note := &models.Note{
		UserID:   id.User.ID,
		Title:    req.Title,
		Text:     req.Text,
		Created:  nowMillis(),
		IsActive: true,
	}
	if err := h.notes.Create(r.Context(), note); err != nil {
		h.serverError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// ArchiveNote serves PATCH /note/{id}. The complementary active flag moves
// with the archive flag; repeating a state is a no-op, not an error.
func (h *Handler) ArchiveNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	noteID, err := pathNoteID(r)
	if err != nil {
		notFoundJSON(w)
		return
	}

	var req struct {
		IsArchived *bool `json:"isArchived"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsArchived == nil {
		badRequest(w, "isArchived is required")
		return
	}

	note, err := h.notes.SetArchived(r.Context(), id.User.ID, noteID, *req.IsArchived)
	if err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			notFoundJSON(w)
			return
		}
		h.serverError(w, "archive note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// EditNote serves PUT /note/{id}/edit. Both fields are required; a partial
// body is a client error, not a silent no-op.
func (h *Handler) EditNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	noteID, err := pathNoteID(r)
	if err != nil {
		notFoundJSON(w)
		return
	}

	var req struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Title == "" || req.Text == "" {
		badRequest(w, "title and text are required")
		return
	}

	note, err := h.notes.UpdateContent(r.Context(), id.User.ID, noteID, req.Title, req.Text)
	if err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			notFoundJSON(w)
			return
		}
		h.serverError(w, "edit note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote serves DELETE /note/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	noteID, err := pathNoteID(r)
	if err != nil {
		notFoundJSON(w)
		return
	}

	if err := h.notes.Delete(r.Context(), id.User.ID, noteID); err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			notFoundJSON(w)
			return
		}
		h.serverError(w, "delete note", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": 1})
}

// DeleteArchived serves DELETE /note: a bulk delete of the user's archived
// notes. Zero matches is a 404 so the client can tell nothing was removed.
func (h *Handler) DeleteArchived(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	deleted, err := h.notes.DeleteArchived(r.Context(), id.User.ID)
	if err != nil {
		h.serverError(w, "delete archived notes", err)
		return
	}
	if deleted == 0 {
		notFoundJSON(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func pathNoteID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
