// Package server exposes the editor backend over HTTP: JSON endpoints for
// one-shot operations and a WebSocket carrying a live editing session.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	minidocs "github.com/alnah/go-minidocs"
)

// Config holds server configuration.
type Config struct {
	Addr           string
	AllowedOrigins []string      // CORS origins; localhost when empty
	AllowAll       bool          // allow all CORS origins (dev mode)
	RequestTimeout time.Duration // per request and per debounced pagination
	Debounce       time.Duration // session edit debounce, 0 = default
}

// EditorSource hands out editors. *minidocs.EditorPool implements it.
type EditorSource interface {
	Acquire(ctx context.Context) (*minidocs.Editor, error)
	Release(ed *minidocs.Editor)
}

// Server serves the HTTP API.
type Server struct {
	cfg        Config
	editors    EditorSource
	router     chi.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*minidocs.Session
}

// New creates a server backed by editors.
func New(cfg Config, editors EditorSource) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	s := &Server{
		cfg:      cfg,
		editors:  editors,
		sessions: make(map[string]*minidocs.Session),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * cfg.RequestTimeout,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/session/ws", s.handleSession)
		r.Get("/styles/{name}", s.handleStyle)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))
			r.Post("/mermaid/sanitize", handleSanitize)
			r.Post("/render", s.handleRender)
			r.Post("/paginate", s.handlePaginate)
			r.Post("/markdown", s.handleMarkdown)
		})
	})
	return r
}

// defaultOrigins are allowed when no origin is configured.
var defaultOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}

// origins returns the origin patterns shared by CORS and the WebSocket
// upgrade. A pattern holds at most one "*".
func (s *Server) origins() []string {
	switch {
	case s.cfg.AllowAll:
		return []string{"*"}
	case len(s.cfg.AllowedOrigins) > 0:
		return s.cfg.AllowedOrigins
	}
	return defaultOrigins
}

// checkOrigin applies the origin policy to WebSocket handshakes, which
// CORS does not cover. Requests without an Origin header are not from a
// browser page and pass.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, pattern := range s.origins() {
		if matchOrigin(pattern, origin) {
			return true
		}
	}
	return false
}

func matchOrigin(pattern, origin string) bool {
	prefix, suffix, wild := strings.Cut(strings.ToLower(pattern), "*")
	origin = strings.ToLower(origin)
	if !wild {
		return origin == prefix
	}
	return len(origin) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix)
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address.
func (s *Server) Start() error {
	log.Printf("minidocs server listening on %s", s.cfg.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown closes live sessions and gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	return s.httpServer.Shutdown(ctx)
}

// withEditor runs fn with an editor from the source.
func (s *Server) withEditor(ctx context.Context, fn func(ed *minidocs.Editor) error) error {
	ed, err := s.editors.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.editors.Release(ed)
	return fn(ed)
}

// poolBackend lets a Session borrow an editor per operation instead of
// holding one for its lifetime.
type poolBackend struct{ s *Server }

func (b poolBackend) Paginate(ctx context.Context, in minidocs.PaginateInput) (res *minidocs.PagedResult, err error) {
	err = b.s.withEditor(ctx, func(ed *minidocs.Editor) error {
		res, err = ed.Paginate(ctx, in)
		return err
	})
	return res, err
}

func (b poolBackend) InsertMarkdown(ctx context.Context, documentHTML, markdown string) (out string, err error) {
	err = b.s.withEditor(ctx, func(ed *minidocs.Editor) error {
		out, err = ed.InsertMarkdown(ctx, documentHTML, markdown)
		return err
	})
	return out, err
}
