// Package worker wraps a bounded reasoning loop over a remote capability
// set. One worker process serves one domain specialization; the loop
// alternates between proposing a capability invocation and observing its
// result until it can answer.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/example/legal-agent-mesh/internal/audit"
	"github.com/example/legal-agent-mesh/internal/llm"
	"github.com/example/legal-agent-mesh/internal/tools"
)

// DefaultMaxSteps bounds the propose/observe loop.
const DefaultMaxSteps = 8

// DefaultPrompt is used when no prompt file exists for the worker.
const DefaultPrompt = `You are a specialist agent. Use your capabilities to gather real data before answering. Never invent information; when you have gathered enough, summarize your findings clearly.`

// Worker is built from configuration — identifier, prompt text, capability
// sources, reasoning client — not subclassed per domain.
type Worker struct {
	Name     string
	Prompt   string
	LLM      llm.Client
	Sources  []string // tool backend base URLs
	Client   *tools.Client
	MaxSteps int
	Audit    *audit.Logger
	Log      *slog.Logger

	resolveOnce sync.Once
	bindings    []tools.Binding
	resolveErr  error
}

// resolve binds capabilities at most once per process lifetime; every
// subsequent request reads the cached set. Known limitation: there is no
// refresh if a backend dies later — restart the worker instead.
func (w *Worker) resolve(ctx context.Context) {
	w.resolveOnce.Do(func() {
		client := w.client()
		for _, src := range w.Sources {
			bindings, err := client.Capabilities(ctx, src)
			if err != nil {
				w.resolveErr = fmt.Errorf("resolve capabilities from %s: %w", src, err)
				return
			}
			w.bindings = append(w.bindings, bindings...)
		}
		w.logger().Info("capabilities resolved", "worker", w.Name, "count", len(w.bindings))
	})
}

// Process answers one query with the reasoning loop. Degraded conditions —
// unreachable tool backends, no capabilities, reasoning errors — come back
// as descriptive text, not as an error: only unexpected failures should
// reach the protocol layer's failed state.
func (w *Worker) Process(ctx context.Context, query string) (string, error) {
	w.resolve(ctx)
	if w.resolveErr != nil {
		w.logger().Warn("capability resolution failed", "worker", w.Name, "err", w.resolveErr)
		return "Error: failed to initialize capabilities: " + w.resolveErr.Error(), nil
	}
	if len(w.bindings) == 0 {
		return "Error: no capabilities available for this agent", nil
	}

	w.Audit.Event("TASK_RECEIVED", map[string]any{"query": query})

	maxSteps := w.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	var transcript []string
	for step := 0; step < maxSteps; step++ {
		out, err := w.LLM.Generate(ctx, w.stepPrompt(query, transcript, false))
		if err != nil {
			return fmt.Sprintf("Error processing query: %v", err), nil
		}
		decision, ok := parseDecision(out)
		if !ok {
			// Prose instead of a decision object: treat it as the answer.
			return strings.TrimSpace(out), nil
		}
		if decision.Final != "" {
			w.Audit.Event("TASK_COMPLETED", map[string]any{"steps": step})
			return decision.Final, nil
		}

		observation := w.invoke(ctx, decision)
		transcript = append(transcript,
			fmt.Sprintf("Action: %s %s", decision.Action, compactJSON(decision.Arguments)),
			"Observation: "+observation)
	}

	// Step ceiling reached: force an answer from what was observed.
	out, err := w.LLM.Generate(ctx, w.stepPrompt(query, transcript, true))
	if err != nil {
		return fmt.Sprintf("Error processing query: %v", err), nil
	}
	w.Audit.Event("TASK_COMPLETED", map[string]any{"steps": maxSteps, "forced": true})
	return strings.TrimSpace(out), nil
}

type decision struct {
	Final     string         `json:"final"`
	Action    string         `json:"action"`
	Arguments map[string]any `json:"arguments"`
}

func parseDecision(out string) (decision, bool) {
	raw := extractJSONObject(out)
	if raw == "" {
		return decision{}, false
	}
	var d decision
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return decision{}, false
	}
	if d.Final == "" && d.Action == "" {
		return decision{}, false
	}
	return d, true
}

func (w *Worker) invoke(ctx context.Context, d decision) string {
	var binding *tools.Binding
	for i := range w.bindings {
		if w.bindings[i].Name == d.Action {
			binding = &w.bindings[i]
			break
		}
	}
	if binding == nil {
		return fmt.Sprintf("unknown capability %q; available: %s", d.Action, w.capabilityNames())
	}
	w.Audit.Event("CAPABILITY_INVOKED", map[string]any{"capability": d.Action})
	result, err := w.client().Invoke(ctx, *binding, d.Arguments)
	if err != nil {
		return "error: " + err.Error()
	}
	return compactJSON(result)
}

func (w *Worker) stepPrompt(query string, transcript []string, final bool) string {
	var b strings.Builder
	b.WriteString(w.prompt())
	b.WriteString("\n\nCapabilities:\n")
	for _, bind := range w.bindings {
		fmt.Fprintf(&b, "- %s: %s\n", bind.Name, bind.Description)
	}
	fmt.Fprintf(&b, "\nUser query: %s\n", query)
	if len(transcript) > 0 {
		b.WriteString("\nSteps so far:\n")
		b.WriteString(strings.Join(transcript, "\n"))
		b.WriteString("\n")
	}
	if final {
		b.WriteString("\nYou are out of steps. Answer the query now using only the observations above.")
	} else {
		b.WriteString(`
Respond with exactly one JSON object, no prose:
- to invoke a capability: {"action": "<name>", "arguments": {...}}
- to answer: {"final": "<your answer>"}`)
	}
	return b.String()
}

func (w *Worker) prompt() string {
	if w.Prompt != "" {
		return w.Prompt
	}
	return DefaultPrompt
}

func (w *Worker) capabilityNames() string {
	names := make([]string, len(w.bindings))
	for i, b := range w.bindings {
		names[i] = b.Name
	}
	return strings.Join(names, ", ")
}

func (w *Worker) client() *tools.Client {
	if w.Client != nil {
		return w.Client
	}
	return &tools.Client{}
}

func (w *Worker) logger() *slog.Logger {
	if w.Log != nil {
		return w.Log
	}
	return slog.Default()
}

func compactJSON(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// extractJSONObject returns the first balanced {...} substring of s,
// ignoring braces inside string literals.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
