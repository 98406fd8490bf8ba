package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/legal-agent-mesh/internal/llm"
)

// Plan is the planner's decision: which workers to call and whether the
// calls run concurrently. Agent ids are not validated here — unknown ids are
// dropped at dispatch time, and duplicates are dispatched as written.
type Plan struct {
	Agents    []string `json:"agents"`
	Parallel  bool     `json:"parallel"`
	Reasoning string   `json:"reasoning"`
}

// AgentInfo is one registry row shown to the planning prompt.
type AgentInfo struct {
	ID          string
	Description string
}

// Planner asks the reasoning step for a structured plan. Unparseable or
// invalid output degrades to the default plan: the fallback worker, run
// sequentially.
type Planner struct {
	LLM      llm.Client
	Agents   []AgentInfo
	Fallback string
	Log      *slog.Logger
}

func (p *Planner) Plan(ctx context.Context, query string) Plan {
	out, err := p.LLM.Generate(ctx, p.prompt(query))
	if err != nil {
		p.logger().Warn("planning failed, using default plan", "err", err)
		return p.DefaultPlan()
	}

	raw := extractJSONObject(out)
	if raw == "" {
		p.logger().Warn("no plan object in planner output, using default plan")
		return p.DefaultPlan()
	}
	var plan Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		p.logger().Warn("plan decode failed, using default plan", "err", err)
		return p.DefaultPlan()
	}

	// Schema check, not registry check: the plan must name at least one
	// non-empty agent. Existence is the dispatcher's concern.
	agents := plan.Agents[:0]
	for _, a := range plan.Agents {
		if s := strings.TrimSpace(a); s != "" {
			agents = append(agents, s)
		}
	}
	if len(agents) == 0 {
		p.logger().Warn("plan names no agents, using default plan")
		return p.DefaultPlan()
	}
	plan.Agents = agents
	return plan
}

// DefaultPlan is the degraded plan used whenever planning cannot produce a
// usable one. It is never empty.
func (p *Planner) DefaultPlan() Plan {
	return Plan{
		Agents:    []string{p.Fallback},
		Parallel:  false,
		Reasoning: "default to " + p.Fallback,
	}
}

func (p *Planner) prompt(query string) string {
	var agents strings.Builder
	for _, a := range p.Agents {
		fmt.Fprintf(&agents, "- %s: %s\n", a.ID, a.Description)
	}
	return fmt.Sprintf(`Plan the execution for this legal query:

Query: %s

Available agents:
%s
Decide the execution plan. Return JSON:
{
    "agents": ["agent1", "agent2"],
    "parallel": true/false,
    "reasoning": "why this plan"
}

If parallel=true, queries run simultaneously. If false, run sequentially.`, query, agents.String())
}

// extractJSONObject returns the first balanced {...} substring, skipping
// braces inside string literals. Returns "" when none is found.
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

func (p *Planner) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}
