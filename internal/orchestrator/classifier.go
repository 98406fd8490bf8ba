// Package orchestrator implements the manager pipeline: classify the query,
// plan which workers to call, dispatch the plan and synthesize one answer.
// Every stage recovers from its own failures; a degraded answer always beats
// a refused one.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/legal-agent-mesh/internal/llm"
)

// Complexity is the triage verdict for one query.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityComplex Complexity = "complex"
)

// Classifier decides whether a query needs one worker or several. It never
// returns an error: any reasoning failure or ambiguous output degrades to
// simple, because under-provisioning work is the safe direction.
type Classifier struct {
	LLM llm.Client
	Log *slog.Logger
}

func (c *Classifier) Classify(ctx context.Context, query string) Complexity {
	prompt := fmt.Sprintf(`Classify this legal query:

Query: %s

Is this SIMPLE (needs one agent) or COMPLEX (needs multiple agents or steps)?

Reply with only: SIMPLE or COMPLEX`, query)

	out, err := c.LLM.Generate(ctx, prompt)
	if err != nil {
		c.logger().Warn("classification failed, defaulting to simple", "err", err)
		return ComplexitySimple
	}
	if strings.Contains(strings.ToUpper(out), "COMPLEX") {
		return ComplexityComplex
	}
	return ComplexitySimple
}

func (c *Classifier) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}
