// Package webui serves the browser front end: REST endpoints for
// session control plus a websocket carrying the live event stream.
package webui

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"solver/pkg/config"
	"solver/pkg/logx"
	"solver/pkg/puzzle"
	"solver/pkg/solver"
)

//go:embed web/static
var staticFS embed.FS

// Server is the web UI HTTP server.
type Server struct {
	manager    *solver.Manager
	httpServer *http.Server
	logger     *logx.Logger
	puzzleDir  string
}

// NewServer creates a web UI server over the given session manager.
func NewServer(manager *solver.Manager, puzzleDir string) *Server {
	return &Server{
		manager:   manager,
		logger:    logx.NewLogger("webui"),
		puzzleDir: puzzleDir,
	}
}

// RegisterRoutes sets up HTTP routes for the API.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	staticSubFS, err := fs.Sub(staticFS, "web/static")
	if err != nil {
		// Embedded at compile time; failure here is a packaging bug.
		panic(fmt.Sprintf("failed to access embedded static files: %v", err))
	}
	mux.Handle("/", http.FileServer(http.FS(staticSubFS)))

	mux.HandleFunc("/api/puzzles", s.handlePuzzles)
	mux.HandleFunc("/api/start", s.handleStart)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/logs", s.handleLogs)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", promhttp.Handler())
}

// Start runs the HTTP server until ctx is canceled.
func (s *Server) Start(ctx context.Context, listen string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web UI listening on http://%s", listen)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write JSON response: %v", err)
	}
}

// handlePuzzles implements GET /api/puzzles.
func (s *Server) handlePuzzles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	infos, err := puzzle.List(s.puzzleDir)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	names := make([]string, 0, len(infos))
	for i := range infos {
		names = append(names, infos[i].Name)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"puzzles": names})
}

// startRequest is the POST /api/start body.
type startRequest struct {
	Puzzle string `json:"puzzle"`
	Model  string `json:"model,omitempty"`
}

// handleStart implements POST /api/start. A second start while a
// session is running is rejected with 409.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}
	if req.Puzzle == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "puzzle is required"})
		return
	}

	path, err := s.resolvePuzzlePath(req.Puzzle)
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
		return
	}

	model := req.Model
	if model == "" {
		cfg, cfgErr := config.GetConfig()
		if cfgErr != nil {
			s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": cfgErr.Error()})
			return
		}
		model = cfg.OracleModel
	}

	session, err := s.manager.StartSession(context.Background(), path, model)
	if err != nil {
		if errors.Is(err, solver.ErrSessionActive) {
			s.writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error()})
			return
		}
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"session_id": session.ID(),
		"puzzle":     req.Puzzle,
		"model":      model,
	})
}

// resolvePuzzlePath maps a puzzle name from the request to a file in
// the puzzle directory. Paths outside the directory are rejected.
func (s *Server) resolvePuzzlePath(name string) (string, error) {
	infos, err := puzzle.List(s.puzzleDir)
	if err != nil {
		return "", err
	}
	for i := range infos {
		if infos[i].Name == name || filepath.Base(infos[i].Path) == name {
			return infos[i].Path, nil
		}
	}
	return "", fmt.Errorf("puzzle %q not found", name)
}

// handleLogs implements GET /api/logs: recent log entries from the
// in-memory buffer, optionally filtered by component and start time.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "since must be RFC3339"})
			return
		}
		since = parsed
	}

	entries := logx.GetRecentLogEntries(r.URL.Query().Get("component"), since)
	s.writeJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

// handleStatus implements GET /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session := s.manager.ActiveSession()
	if session == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"state": "IDLE"})
		return
	}
	s.writeJSON(w, http.StatusOK, session.GetSnapshot())
}
