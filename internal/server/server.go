// Package server exposes the store and its aggregates over HTTP. It is a
// small read-mostly surface: entries can be listed and appended, the
// dashboard summary is served as JSON, and exports are offered as downloads.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mesh-intelligence/triggerlog/internal/export"
	"github.com/mesh-intelligence/triggerlog/internal/logger"
	"github.com/mesh-intelligence/triggerlog/internal/stats"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// maxBodyBytes caps POST /api/entries request bodies.
const maxBodyBytes = 1 << 16

// Options configures aggregation and time for a Server.
type Options struct {
	Feelings []string
	// Threshold is the default pattern threshold for /api/summary when the
	// request has no threshold parameter. Negative means
	// stats.DefaultPatternThreshold; zero keeps every group.
	Threshold int
	TopN      int
	Now       func() time.Time
}

// Server serves the HTTP routes over an attached store.
type Server struct {
	store types.Store
	opts  Options

	// writeMu serializes appends so concurrent requests do not lose entries
	// in the read-modify-write of the file backends.
	writeMu sync.Mutex

	mux *http.ServeMux
}

// New returns a Server over store. The store must stay attached for the
// lifetime of the Server.
func New(store types.Store, opts Options) *Server {
	if len(opts.Feelings) == 0 {
		opts.Feelings = types.DefaultFeelings
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{store: store, opts: opts, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /api/entries", s.handleListEntries)
	s.mux.HandleFunc("POST /api/entries", s.handleCreateEntry)
	s.mux.HandleFunc("GET /api/summary", s.handleSummary)
	s.mux.HandleFunc("GET /export/csv", s.handleExportCSV)
	s.mux.HandleFunc("GET /export/json", s.handleExportJSON)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return RequestLogger(s.mux)
}

// entryRequest is the POST /api/entries body.
type entryRequest struct {
	Trigger   string         `json:"trigger"`
	Before    string         `json:"before"`
	After     string         `json:"after"`
	Feelings  types.Feelings `json:"feelings"`
	Intensity *int           `json:"intensity"`
	Notes     string         `json:"notes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.Load()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	intensity := types.DefaultIntensity
	if req.Intensity != nil {
		intensity = *req.Intensity
	}
	entry, err := types.NewEntry(s.opts.Now(), types.Entry{
		Trigger:   req.Trigger,
		Before:    req.Before,
		After:     req.After,
		Feelings:  req.Feelings,
		Intensity: intensity,
		Notes:     req.Notes,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.writeMu.Lock()
	err = s.store.Append(entry)
	s.writeMu.Unlock()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	logger.Info("entry logged", "id", entry.ID, "trigger", entry.Trigger, "source", "http")
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	threshold, err := queryInt(r, "threshold", s.opts.Threshold)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	window, err := queryInt(r, "window", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	entries, err := s.store.Load()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Summarize(entries, stats.Options{
		Feelings:  s.opts.Feelings,
		Threshold: threshold,
		TopN:      s.opts.TopN,
		Window:    window,
		Now:       s.opts.Now(),
	}))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, "text/csv; charset=utf-8", export.CSVFileName, func(w io.Writer, entries []types.Entry) error {
		return export.WriteCSV(w, entries, s.opts.Feelings)
	})
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, "application/json", export.JSONFileName, export.WriteJSON)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// download renders the export into memory first so an empty store can
// still be reported with a status code.
func (s *Server) download(w http.ResponseWriter, r *http.Request, contentType string, name func(time.Time) string, render func(io.Writer, []types.Entry) error) {
	entries, err := s.store.Load()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := render(&buf, entries); err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name(s.opts.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// fail maps err to a status code and writes it as a JSON error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNoEntries), errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrEmptyTrigger), errors.Is(err, types.ErrInvalidFeeling):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New(key + " must be a non-negative integer")
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Warn("write response", "error", err)
	}
}
