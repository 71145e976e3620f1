package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"marknotes/middleware"
	"marknotes/store"
)

// Handler carries the stores and settings the route handlers need.
type Handler struct {
	users      *store.UserStore
	sessions   *store.SessionStore
	notes      *store.NoteStore
	sessionTTL time.Duration
	log        *logrus.Logger
}

func New(users *store.UserStore, sessions *store.SessionStore, notes *store.NoteStore, sessionTTL time.Duration, log *logrus.Logger) *Handler {
	return &Handler{
		users:      users,
		sessions:   sessions,
		notes:      notes,
		sessionTTL: sessionTTL,
		log:        log,
	}
}

func (h *Handler) identity(r *http.Request) (middleware.Identity, bool) {
	return middleware.IdentityFrom(r.Context())
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.log.Errorf("%s: %v", op, err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func notFoundJSON(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not Found"})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
