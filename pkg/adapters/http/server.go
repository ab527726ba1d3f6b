// Package http serves a local stand-in for the assistant backend: the agent
// endpoints (streaming and one-shot) and the document corpus routes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/ragchat/internal/logging"
	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxUploadMemory bounds the multipart form kept in memory.
const maxUploadMemory = 32 << 20

// Server routes backend requests to an Agent and a document store.
type Server struct {
	Agent  Agent
	Corpus ports.DocumentStore
	Logger *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = l
	}
}

// NewHandler creates the backend HTTP handler.
func NewHandler(agent Agent, corpus ports.DocumentStore, opts ...Option) http.Handler {
	s := &Server{
		Agent:  agent,
		Corpus: corpus,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Post("/api/agent", s.Ask)
	r.Get("/api/agent/stream", s.Stream)
	r.Post("/upload", s.Upload)
	r.Get("/files/list", s.ListFiles)
	r.Delete("/files/clear", s.ClearFiles)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.Logger)
}

// Stream handles the GET /api/agent/stream request (SSE).
func (s *Server) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("Stream: Streaming not supported")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "query must not be empty"}, s.Logger)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.Logger.Info("SSE: Agent stream opened", "query_size", len(query))

	terminal := false
	emit := func(ev domain.StreamEvent) error {
		if terminal {
			return nil
		}
		if err := r.Context().Err(); err != nil {
			return err
		}
		data, err := domain.EncodeEvent(ev)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type(), data); err != nil {
			return err
		}
		flusher.Flush()
		terminal = ev.Terminal()
		return nil
	}

	if err := s.Agent.Run(r.Context(), query, emit); err != nil {
		if errors.Is(err, context.Canceled) {
			s.Logger.Info("SSE Client Disconnected")
			return
		}
		s.Logger.Error("Agent failed", "error", err)
		_ = emit(domain.Error{Text: err.Error()})
	}
}

type askRequest struct {
	Query string `json:"query"`
}

// Ask handles the POST /api/agent request.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var body askRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"}, s.Logger)
		s.Logger.Warn("Ask: Invalid request body", "error", err)
		return
	}
	if strings.TrimSpace(body.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "query must not be empty"}, s.Logger)
		return
	}

	start := time.Now()
	var (
		final  domain.StreamEvent
		nodes  []string
		events int
	)
	err := s.Agent.Run(r.Context(), body.Query, func(ev domain.StreamEvent) error {
		if final != nil {
			return nil
		}
		events++
		if n, ok := ev.(domain.NodeUpdate); ok {
			nodes = append(nodes, n.Node)
		}
		if ev.Terminal() {
			final = ev
		}
		return nil
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()}, s.Logger)
		s.Logger.Error("Ask failed", "error", err)
		return
	}

	switch ev := final.(type) {
	case domain.FinalResult:
		writeJSON(w, http.StatusOK, map[string]any{
			"answer": ev.Text,
			"stats": map[string]any{
				"events":      events,
				"nodes":       nodes,
				"duration_ms": time.Since(start).Milliseconds(),
			},
		}, s.Logger)
	case domain.Error:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": ev.Text}, s.Logger)
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "agent produced no answer"}, s.Logger)
	}
}

// Upload handles the POST /upload request.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid multipart form"}, s.Logger)
		s.Logger.Warn("Upload: Invalid form", "error", err)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "no files provided"}, s.Logger)
		return
	}

	files := make([]ports.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": fmt.Sprintf("%s: %v", fh.Filename, err)}, s.Logger)
			return
		}
		defer f.Close()
		files = append(files, ports.File{Name: fh.Filename, Content: f})
	}

	res, err := s.Corpus.Upload(r.Context(), files)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()}, s.Logger)
		s.Logger.Error("Upload failed", "error", err)
		return
	}
	if res.Errors == nil {
		res.Errors = []string{}
	}
	s.Logger.Info("Upload: Documents processed", "files", len(files), "errors", len(res.Errors))
	writeJSON(w, http.StatusOK, res, s.Logger)
}

// ListFiles handles the GET /files/list request.
func (s *Server) ListFiles(w http.ResponseWriter, r *http.Request) {
	names, err := s.Corpus.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()}, s.Logger)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names, s.Logger)
}

// ClearFiles handles the DELETE /files/clear request.
func (s *Server) ClearFiles(w http.ResponseWriter, r *http.Request) {
	msg, err := s.Corpus.Clear(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()}, s.Logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg}, s.Logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}
