// Package web serves the household dashboard and its JSON API behind
// session-cookie authentication.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jhenrym/famlife/internal/config"
	"github.com/jhenrym/famlife/internal/parser"
	"github.com/jhenrym/famlife/internal/storage"
)

//go:embed templates/*.html
var templatesFS embed.FS

type ctxKey int

const sessionKey ctxKey = 0

func withSession(ctx context.Context, sess session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

func sessionFrom(ctx context.Context) session {
	sess, _ := ctx.Value(sessionKey).(session)
	return sess
}

// Server holds the dashboard's dependencies.
type Server struct {
	store        storage.Store
	dispatcher   *parser.Dispatcher
	users        map[string]config.UserConfig
	sessions     *sessionStore
	loginLimiter *rate.Limiter
	logger       *zap.Logger
	tmpl         *template.Template
}

// New builds a Server. users is the fixed credential table from config.
func New(store storage.Store, dispatcher *parser.Dispatcher, users map[string]config.UserConfig, logger *zap.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Server{
		store:      store,
		dispatcher: dispatcher,
		users:      users,
		sessions:   newSessionStore(),
		// Brute-force guard on the login form: 1 attempt/sec sustained, burst 5.
		loginLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:       logger,
		tmpl:         tmpl,
	}, nil
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Get("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/", s.handleDashboard)

		r.Route("/api", func(r chi.Router) {
			r.Post("/command", s.handleCommand)
			r.Post("/add", s.handleAdd)
			r.Post("/complete", s.handleComplete)
			r.Get("/data", s.handleData)
			r.Post("/appointments", s.handleCreateAppointment)
			r.Get("/appointments", s.handleListAppointments)
			r.Delete("/appointments/{id}", s.handleDeleteAppointment)
		})
	})

	return r
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := struct{ Error bool }{Error: r.URL.Query().Get("error") != ""}
	if err := s.tmpl.ExecuteTemplate(w, "login.html", data); err != nil {
		s.logger.Error("rendering login page", zap.Error(err))
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.loginLimiter.Allow() {
		http.Error(w, "too many login attempts", http.StatusTooManyRequests)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	name, ok := s.checkCredentials(username, password)
	if !ok {
		s.logger.Warn("failed login attempt", zap.String("username", username))
		http.Redirect(w, r, "/login?error=1", http.StatusSeeOther)
		return
	}

	token := s.sessions.Create(username, name)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
