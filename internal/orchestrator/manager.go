package orchestrator

import (
	"context"
	"log/slog"
	"sort"

	"github.com/example/legal-agent-mesh/internal/audit"
	"github.com/example/legal-agent-mesh/internal/llm"
	"github.com/example/legal-agent-mesh/internal/protocol"
)

// Manager composes the pipeline per request. Its Process method plugs
// straight into a protocol handler; the four stages below absorb their own
// failures, so an error return means a genuine bug rather than a degraded
// answer.
type Manager struct {
	Classifier  *Classifier
	Planner     *Planner
	Dispatcher  *Dispatcher
	Synthesizer *Synthesizer
	Audit       *audit.Logger
	Log         *slog.Logger
}

// ManagerConfig carries everything a manager is built from. Construction is
// configuration, not subclassing: a differently-specialized mesh supplies a
// different registry and prompts, not a different type.
type ManagerConfig struct {
	LLM      llm.Client
	Registry map[string]string // worker id → base URL
	Agents   []AgentInfo       // shown to the planner
	Fallback string
	Client   *protocol.Client
	Audit    *audit.Logger
	Log      *slog.Logger
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Fallback == "" && len(cfg.Registry) > 0 {
		ids := make([]string, 0, len(cfg.Registry))
		for id := range cfg.Registry {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		cfg.Fallback = ids[0]
	}
	return &Manager{
		Classifier:  &Classifier{LLM: cfg.LLM, Log: cfg.Log},
		Planner:     &Planner{LLM: cfg.LLM, Agents: cfg.Agents, Fallback: cfg.Fallback, Log: cfg.Log},
		Dispatcher:  &Dispatcher{Registry: cfg.Registry, Client: cfg.Client, Log: cfg.Log},
		Synthesizer: &Synthesizer{LLM: cfg.LLM, Log: cfg.Log},
		Audit:       cfg.Audit,
		Log:         cfg.Log,
	}
}

// Process runs classify → plan → dispatch → synthesize for one query.
func (m *Manager) Process(ctx context.Context, query string) (string, error) {
	m.Audit.Event("QUERY_RECEIVED", map[string]any{"query": query})

	complexity := m.Classifier.Classify(ctx, query)
	m.Audit.Event("COMPLEXITY_CLASSIFIED", map[string]any{"complexity": string(complexity)})

	plan := m.Planner.Plan(ctx, query)
	m.Audit.Event("PLAN_CREATED", map[string]any{
		"agents":    plan.Agents,
		"parallel":  plan.Parallel,
		"reasoning": plan.Reasoning,
	})

	results := m.Dispatcher.Dispatch(ctx, query, plan)
	m.Audit.Event("EXECUTION_COMPLETE", map[string]any{
		"result_count": len(results),
		"failures":     countFailures(results),
	})

	answer := m.Synthesizer.Synthesize(ctx, query, results)
	m.Audit.Event("SYNTHESIS_COMPLETE", map[string]any{"preview": previewText(answer, 200)})
	return answer, nil
}

func countFailures(results []CallResult) int {
	n := 0
	for _, r := range results {
		if !r.Success {
			n++
		}
	}
	return n
}

func previewText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
