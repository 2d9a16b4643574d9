// Package web provides a simple web UI for planloom sessions and runs.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/planloom/planloom/internal/logging"
	"github.com/planloom/planloom/internal/session"
	"github.com/planloom/planloom/internal/store"
)

// Server provides the web UI handlers and state.
type Server struct {
	sessions session.Repository
	store    *store.Store
	log      zerolog.Logger
}

// NewServer creates a new web server.
func NewServer(sessions session.Repository, st *store.Store) *Server {
	return &Server{sessions: sessions, store: st, log: logging.Component("web")}
}

//go:embed templates/*.html
var templatesFS embed.FS

// Routes returns the router for the web UI.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /runs/{id}", s.handleRun)
	mux.HandleFunc("POST /sessions/{id}/delete", s.handleDeleteSession)
	return mux
}

type indexData struct {
	Sessions []session.Session
	Runs     []store.RunRecord
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	runs, err := s.store.ListRuns(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := indexData{
		Sessions: s.sessions.List(),
		Runs:     runs,
	}
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type runData struct {
	Run        store.RunRecord
	Iterations []store.IterationRecord
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	run, ok, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	iterations, err := s.store.ListIterations(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/run.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.Execute(w, runData{Run: run, Iterations: iterations}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.sessions.Delete(id)
	s.log.Info().Str("session", id).Msg("session deleted")
	w.WriteHeader(http.StatusOK)
}
