package tools

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Server exposes a capability registry over HTTP:
//
//	GET  /capabilities → {"tools": [{name, description}]}
//	POST /invoke       → {"name": ..., "arguments": {...}}
//	GET  /health
//
// Tool-level failures are carried in the response body so a reasoning loop
// can observe them; only a malformed request is an HTTP error.
type Server struct {
	Name     string
	Registry *Registry
	Log      *slog.Logger
}

type invokeRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type invokeResponse struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /capabilities", s.handleCapabilities)
	mux.HandleFunc("POST /invoke", s.handleInvoke)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func (s *Server) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"tools": s.Registry.List()})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	tool, ok := s.Registry.Get(req.Name)
	if !ok {
		writeJSON(w, invokeResponse{Error: "unknown tool: " + req.Name})
		return
	}
	s.logger().Info("invoke", "backend", s.Name, "tool", req.Name)
	out, err := tool.Execute(r.Context(), req.Arguments)
	if err != nil {
		writeJSON(w, invokeResponse{Error: err.Error()})
		return
	}
	writeJSON(w, invokeResponse{Result: out})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "healthy", "agent": s.Name})
}

func (s *Server) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
