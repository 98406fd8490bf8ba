package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// ProcessFunc produces the response text for one query. The manager plugs in
// its classify/plan/dispatch/synthesize pipeline, a worker its reasoning
// loop. A returned error moves the task to failed; degraded-but-normal
// conditions should instead be reported in the returned text.
type ProcessFunc func(ctx context.Context, query string) (string, error)

// HandlerConfig parameterizes one endpoint. The handler shape is identical
// for the manager and every worker.
type HandlerConfig struct {
	Name        string
	Description string
	Version     string
	URL         string
	Process     ProcessFunc
	Log         *slog.Logger
}

type handler struct {
	cfg HandlerConfig
}

// NewHandler builds the HTTP surface of an agent.
func NewHandler(cfg HandlerConfig) http.Handler {
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	h := &handler{cfg: cfg}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /task", h.handleTask)
	mux.HandleFunc("GET /.well-known/agent.json", h.handleDescriptor)
	mux.HandleFunc("GET /health", h.handleHealth)
	return mux
}

func (h *handler) handleTask(w http.ResponseWriter, r *http.Request) {
	task := &Task{Status: Status{State: StateProcessing}, Artifacts: []Artifact{}}

	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		task.fail("invalid request body: " + err.Error())
		respondJSON(w, task)
		return
	}
	task.ID = req.ID

	query := strings.TrimSpace(req.Message.Content.Text)
	if query == "" {
		task.Status = Status{
			State:   StateInputRequired,
			Message: &Message{Role: "agent", Content: Content{Text: "Please provide a query"}},
		}
		respondJSON(w, task)
		return
	}

	h.cfg.Log.Info("task received", "agent", h.cfg.Name, "query", preview(query, 100))
	h.process(r.Context(), task, query)
	respondJSON(w, task)
}

// process drives the state machine around the component-specific function.
// Errors and panics become the failed terminal state; they never escape.
func (h *handler) process(ctx context.Context, task *Task, query string) {
	defer func() {
		if rec := recover(); rec != nil {
			h.cfg.Log.Error("task panic", "agent", h.cfg.Name, "panic", rec)
			task.fail(fmt.Sprintf("Error: %v", rec))
		}
	}()
	result, err := h.cfg.Process(ctx, query)
	if err != nil {
		h.cfg.Log.Error("task failed", "agent", h.cfg.Name, "err", err)
		task.fail("Error: " + err.Error())
		return
	}
	task.Status = Status{State: StateCompleted}
	task.Artifacts = []Artifact{{Parts: []Part{{Type: "text", Text: result}}}}
}

func (t *Task) fail(msg string) {
	t.Status = Status{
		State:   StateFailed,
		Message: &Message{Role: "agent", Content: Content{Text: msg}},
	}
	t.Artifacts = []Artifact{}
}

func (h *handler) handleDescriptor(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, Descriptor{
		Name:        h.cfg.Name,
		Description: h.cfg.Description,
		Version:     h.cfg.Version,
		URL:         h.cfg.URL,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, map[string]string{"status": "healthy", "agent": h.cfg.Name})
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
