package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"lifeplan/internal/analysis"
	"lifeplan/internal/checklist"
	"lifeplan/internal/config"
	"lifeplan/internal/dailylog"
	"lifeplan/internal/habit"
	appLog "lifeplan/internal/log"
	"lifeplan/internal/model"
	"lifeplan/internal/prefs"
)

// EventSource supplies calendar events; *ics.Supplier implements it.
type EventSource interface {
	GetEvents(ctx context.Context, timeMin, timeMax time.Time) ([]model.CalendarEvent, error)
}

// Deps are the collaborators the API serves.
type Deps struct {
	Config     *config.Config
	Location   *time.Location
	Events     EventSource
	Prefs      *prefs.Store
	Checklists *checklist.Service
	Habits     *habit.Service
	Logs       *dailylog.Service
}

// Server exposes the analysis engine and the daily records over JSON.
type Server struct {
	cfg      *config.Config
	loc      *time.Location
	events   EventSource
	prefs    *prefs.Store
	lists    *checklist.Service
	habits   *habit.Service
	logs     *dailylog.Service
	analyzer *analysis.Analyzer
	mux      *http.ServeMux
	now      func() time.Time
}

// NewServer constructs a Server and registers its routes.
func NewServer(d Deps) *Server {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	s := &Server{
		cfg:      d.Config,
		loc:      loc,
		events:   d.Events,
		prefs:    d.Prefs,
		lists:    d.Checklists,
		habits:   d.Habits,
		logs:     d.Logs,
		analyzer: analysis.New(loc),
		mux:      http.NewServeMux(),
		now:      time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler, wrapped in basic auth when configured.
func (s *Server) Handler() http.Handler {
	h := s.logRequests(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled")
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials disable auth rather than locking everyone out.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware protects every path except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="lifeplan", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"took", time.Since(start).String(),
		)
	})
}

// ListenAndServe serves on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/analysis/day", s.handleAnalyzeDay)
	s.mux.HandleFunc("GET /api/analysis/week", s.handleAnalyzeWeek)
	s.mux.HandleFunc("GET /api/slots", s.handleSlots)

	s.mux.HandleFunc("GET /api/preferences", s.handleGetPreferences)
	s.mux.HandleFunc("PATCH /api/preferences", s.handlePatchPreferences)

	s.mux.HandleFunc("GET /api/checklist", s.handleGetChecklist)
	s.mux.HandleFunc("GET /api/checklist/recent", s.handleRecentChecklists)
	s.mux.HandleFunc("POST /api/checklist/items", s.handleAddItem)
	s.mux.HandleFunc("PATCH /api/checklist/items/{id}", s.handleUpdateItem)
	s.mux.HandleFunc("DELETE /api/checklist/items/{id}", s.handleRemoveItem)
	s.mux.HandleFunc("POST /api/checklist/items/{id}/complete", s.handleCompleteItem)

	s.mux.HandleFunc("GET /api/habits", s.handleHabits)
	s.mux.HandleFunc("POST /api/habits/{name}", s.handleMarkHabit)

	s.mux.HandleFunc("GET /api/log", s.handleGetLog)
	s.mux.HandleFunc("POST /api/log", s.handleAppendLog)
	s.mux.HandleFunc("GET /api/log/recent", s.handleRecentLogs)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// today is the current date in the server location.
func (s *Server) today() string {
	return s.now().In(s.loc).Format(model.DateLayout)
}

// dateParam returns ?name=, defaulting to today.
func (s *Server) dateParam(r *http.Request, name string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return s.today()
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

const maxBodyBytes = 1 << 20

// readBody reads a bounded request body.
func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

// decodeBody decodes a JSON request body into v. Unknown fields are
// rejected.
func decodeBody(r *http.Request, v any) error {
	body, err := readBody(r)
	if err != nil {
		return model.Invalidf("request body: %w", err)
	}
	return decodeBytes(body, v)
}

func decodeBytes(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return model.Invalidf("request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// writeErr maps service errors to HTTP statuses: NotFoundError is 404,
// ErrInvalid is 400, anything else is logged and returned as 500.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case model.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		appLog.Error("request failed", err, "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
