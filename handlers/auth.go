package handlers

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"marknotes/middleware"
	"marknotes/models"
	"marknotes/store"
)

// Every fresh account starts with one demo note.
const (
	demoNoteTitle = "Demo"
	demoNoteText  = "**Bold**\n*Italic*\n# Header\n> Quote"
)

// Login checks form credentials against the stored bcrypt hash. An unknown
// username and a wrong password produce the same redirect flag so the
// response never reveals which one it was.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/?authError=true", http.StatusFound)
		return
	}
	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			http.Redirect(w, r, "/?authError=true", http.StatusFound)
			return
		}
		h.serverError(w, "login: lookup user", err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		http.Redirect(w, r, "/?authError=true", http.StatusFound)
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID, h.sessionTTL)
	if err != nil {
		h.serverError(w, "login: create session", err)
		return
	}

	setSessionCookie(w, token)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Signup creates the account, an initial session and the demo note, then
// sends the new user home with the cookie set. A taken username redirects
// with the duplicate flag and changes nothing.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/?authError=true", http.StatusFound)
		return
	}
	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		http.Redirect(w, r, "/?authError=true", http.StatusFound)
		return
	}

	if _, err := h.users.GetByUsername(r.Context(), username); err == nil {
		http.Redirect(w, r, "/?duplicateError=true", http.StatusFound)
		return
	} else if !errors.Is(err, store.ErrUserNotFound) {
		h.serverError(w, "signup: lookup user", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.serverError(w, "signup: hash password", err)
		return
	}

	user, err := h.users.Create(r.Context(), username, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			http.Redirect(w, r, "/?duplicateError=true", http.StatusFound)
			return
		}
		h.serverError(w, "signup: create user", err)
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID, h.sessionTTL)
	if err != nil {
		h.serverError(w, "signup: create session", err)
		return
	}

	demo := &models.Note{
		UserID:   user.ID,
		Title:    demoNoteTitle,
		Text:     demoNoteText,
		Created:  nowMillis(),
		IsActive: true,
	}
	if err := h.notes.Create(r.Context(), demo); err != nil {
		h.serverError(w, "signup: create demo note", err)
		return
	}

	setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout deletes the session the request arrived on and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := h.sessions.Delete(r.Context(), id.Token); err != nil {
		h.serverError(w, "logout: delete session", err)
		return
	}

	clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
