package handlers

import (
	"html/template"
	"net/http"
)

// The UI proper lives in the frontend; these pages are the minimal server
// rendered entry points.

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Notes</title></head>
<body>
{{if .AuthError}}<p class="error">Wrong username or password</p>{{end}}
{{if .DuplicateError}}<p class="error">A user with that name already exists</p>{{end}}
<form method="post" action="/login">
<input name="username" placeholder="username">
<input name="password" type="password" placeholder="password">
<button type="submit">Log in</button>
</form>
<form method="post" action="/signup">
<input name="username" placeholder="username">
<input name="password" type="password" placeholder="password">
<button type="submit">Sign up</button>
</form>
</body>
</html>
`))

var dashboardPage = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>Dashboard</title></head>
<body>
<h1>{{.Username}}'s notes</h1>
<a href="/logout">Log out</a>
</body>
</html>
`))

var notFoundPage = template.Must(template.New("404").Parse(`<!DOCTYPE html>
<html>
<head><title>Not Found</title></head>
<body><h1>404</h1><p>Page not found.</p><a href="/">Home</a></body>
</html>
`))

// Index shows the login/signup page, or sends authenticated users to the
// dashboard. Error banners are driven by the redirect query flags.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.identity(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	q := r.URL.Query()
	data := struct {
		AuthError      bool
		DuplicateError bool
	}{
		AuthError:      q.Get("authError") == "true",
		DuplicateError: q.Get("duplicateError") == "true",
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexPage.Execute(w, data); err != nil {
		h.log.Errorf("render index: %v", err)
	}
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardPage.Execute(w, struct{ Username string }{id.User.Username}); err != nil {
		h.log.Errorf("render dashboard: %v", err)
	}
}

// NotFound renders the generic not-found page for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := notFoundPage.Execute(w, nil); err != nil {
		h.log.Errorf("render 404: %v", err)
	}
}
