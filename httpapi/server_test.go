package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/martinemde/percolate/llm"
	"github.com/martinemde/percolate/workflow"
)

// scriptedAdapter replays fixed responses so runs finish deterministically
// without a network.
type scriptedAdapter struct {
	mu    sync.Mutex
	turns []string
	calls int
}

func (s *scriptedAdapter) Name() string { return "scripted" }

func (s *scriptedAdapter) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	turn := s.turns[len(s.turns)-1]
	if s.calls < len(s.turns) {
		turn = s.turns[s.calls]
	}
	s.calls++
	return turn
}

func (s *scriptedAdapter) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return &llm.Response{
		Message:      llm.AssistantMessage(s.next()),
		FinishReason: llm.FinishReason{Reason: "stop"},
	}, nil
}

func (s *scriptedAdapter) Stream(ctx context.Context, req llm.Request) (<-chan llm.StreamEvent, error) {
	text := s.next()
	ch := make(chan llm.StreamEvent, 8)
	go func() {
		defer close(ch)
		ch <- llm.StreamEvent{Type: llm.StreamStart}
		ch <- llm.StreamEvent{Type: llm.TextDelta, Delta: text}
		fr := llm.FinishReason{Reason: "stop"}
		ch <- llm.StreamEvent{Type: llm.StreamFinish, FinishReason: &fr}
	}()
	return ch, nil
}

func testServer() *Server {
	adapter := &scriptedAdapter{turns: []string{
		"```python\nratio = 16\n```",
		"looks fine",
		"```python\nratio = 16\n```",
		"APPROVE",
	}}
	client := llm.NewClient(llm.WithProvider("scripted", adapter))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	factory := func() *workflow.Coordinator {
		cfg := workflow.DefaultConfig()
		cfg.Model = "test-model"
		cfg.Provider = "scripted"
		cfg.Retry = llm.RetryPolicy{MaxRetries: 1, BaseDelay: 0.001, MaxDelay: 0.002, BackoffMultiplier: 2}
		cfg.Logger = logger
		return workflow.NewCoordinator(client, cfg)
	}
	return NewServer(factory, logger)
}

func TestCreateRunStreamsResult(t *testing.T) {
	srv := testServer()
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/runs",
		strings.NewReader(`{"requirement": "pour-over ratio calculator"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q, want text/event-stream", ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event: message") {
		t.Error("no message events in stream")
	}
	if !strings.Contains(body, "event: result") {
		t.Fatal("no result event in stream")
	}
	if !strings.Contains(body, `"state":"approved"`) {
		t.Errorf("result does not report approval:\n%s", body)
	}
	if !strings.Contains(body, "ratio = 16") {
		t.Error("artifact missing from stream")
	}
}

func TestCreateRunRejectsBadRequests(t *testing.T) {
	handler := testServer().Handler()

	for _, body := range []string{"", "{}", "not json"} {
		req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	handler := testServer().Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}

func TestMetricsCountRuns(t *testing.T) {
	srv := testServer()
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/runs",
		strings.NewReader(`{"requirement": "ratio calculator"}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "percolate_runs_started_total 1") {
		t.Errorf("runs started counter missing:\n%s", body)
	}
	if !strings.Contains(body, `percolate_runs_finished_total{state="approved"} 1`) {
		t.Errorf("runs finished counter missing:\n%s", body)
	}
}
