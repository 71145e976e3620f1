package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"marknotes/config"
	"marknotes/db"
	"marknotes/handlers"
	appmw "marknotes/middleware"
	"marknotes/store"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file, relying on the environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	conn, err := db.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatalf("connect database: %v", err)
	}
	defer conn.Close()

	users := store.NewUserStore(conn)
	sessions := store.NewSessionStore(conn)
	notes := store.NewNoteStore(conn)

	auth := appmw.NewAuthenticator(sessions, users, logger)
	h := handlers.New(users, sessions, notes, cfg.Session.TTL, logger)

	router := newRouter(h, auth)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
}

func newRouter(h *handlers.Handler, auth *appmw.Authenticator) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.With(auth.Auth(appmw.Optional)).Get("/", h.Index)
	r.Post("/login", h.Login)
	r.Post("/signup", h.Signup)

	r.Group(func(r chi.Router) {
		r.Use(auth.Auth(appmw.Required))
		r.Get("/dashboard", h.Dashboard)
		r.Get("/logout", h.Logout)
		r.Get("/note", h.ListNotes)
		r.Get("/note/{id}", h.GetNote)
		r.Get("/note/{id}/pdf", h.ExportPDF)
		r.Post("/new", h.CreateNote)
		r.Patch("/note/{id}", h.ArchiveNote)
		r.Put("/note/{id}/edit", h.EditNote)
		r.Delete("/note/{id}", h.DeleteNote)
		r.Delete("/note", h.DeleteArchived)
	})

	r.NotFound(h.NotFound)

	return r
}
