package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/legal-agent-mesh/internal/llm"
)

// NoResultsMessage is returned verbatim when no worker produced output.
const NoResultsMessage = "No results obtained from worker agents."

// Synthesizer merges worker outputs into one answer. A reasoning failure
// here surfaces as text in a completed task, never as a protocol-level
// failure.
type Synthesizer struct {
	LLM llm.Client
	Log *slog.Logger
}

func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []CallResult) string {
	var texts []string
	for i, r := range results {
		if !r.Success {
			continue
		}
		if text := r.Task.Text(); text != "" {
			texts = append(texts, fmt.Sprintf("Agent %d Result:\n%s", i+1, text))
		}
	}
	if len(texts) == 0 {
		return NoResultsMessage
	}

	prompt := fmt.Sprintf(`Synthesize these results into a comprehensive answer.

ORIGINAL QUERY: %s

AGENT RESULTS:
%s

Create a unified response that:
1. Answers the original query directly
2. Integrates insights from all sources
3. Highlights key findings and recommendations
4. Notes any conflicts or uncertainties`, query, strings.Join(texts, "\n"))

	out, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		s.logger().Warn("synthesis failed", "err", err)
		return fmt.Sprintf("Synthesis error: %s", err)
	}
	return strings.TrimSpace(out)
}

func (s *Synthesizer) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
