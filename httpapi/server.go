// Package httpapi serves workflow runs over HTTP: one POST starts a run
// and streams its transcript as server-sent events, with health and metrics
// endpoints alongside. Each run gets its own coordinator and goroutine;
// nothing mutable is shared between runs.
package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/martinemde/percolate/workflow"
)

// CoordinatorFactory builds a fresh coordinator for one run.
type CoordinatorFactory func() *workflow.Coordinator

// Server handles the HTTP surface.
type Server struct {
	newCoordinator CoordinatorFactory
	logger         *slog.Logger
	metrics        *Metrics
}

// NewServer creates a Server.
func NewServer(factory CoordinatorFactory, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		newCoordinator: factory,
		logger:         logger,
		metrics:        NewMetrics(),
	}
}

// Handler returns the chi router for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Post("/api/runs", s.handleCreateRun)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type runRequest struct {
	Requirement string `json:"requirement"`
}

// handleCreateRun starts a workflow run and streams its messages as SSE
// "message" events, ending with one "result" event carrying the final run
// record. Closing the connection cancels the run via the request context.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Requirement == "" {
		http.Error(w, "requirement is required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	coord := s.newCoordinator()
	s.metrics.RunsStarted.Inc()
	s.logger.Info("run accepted", "run_id", coord.ID())
	start := time.Now()

	type outcome struct {
		result *workflow.RunResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := coord.Run(r.Context(), req.Requirement)
		done <- outcome{result: result, err: err}
	}()

	for msg := range coord.Events() {
		if err := writeSSE(w, "message", msg); err != nil {
			// Client went away; the request context cancels the run.
			s.logger.Info("client disconnected", "run_id", coord.ID())
			break
		}
		flusher.Flush()
	}

	out := <-done
	s.metrics.RunDuration.Observe(time.Since(start).Seconds())

	state := string(workflow.TerminationFatal)
	if out.result != nil {
		state = string(out.result.State)
	}
	s.metrics.RunsFinished.WithLabelValues(state).Inc()

	if out.err != nil {
		s.logger.Error("run failed", "run_id", coord.ID(), "state", state, "error", out.err)
	} else {
		s.logger.Info("run finished", "run_id", coord.ID(), "state", state)
	}

	if out.result != nil {
		if err := writeSSE(w, "result", out.result); err == nil {
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
