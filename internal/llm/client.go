// Package llm wraps the natural-language reasoning step used for query
// classification, execution planning, result synthesis and worker capability
// selection. Providers have unpredictable latency and occasionally return
// malformed output; callers are expected to recover from both.
package llm

import (
	"context"
	"sync"
)

// Client is the single reasoning primitive injected into every component.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Scripted replays canned responses in order. It backs deterministic tests
// and the offline mode used when no provider is configured.
type Scripted struct {
	Responses []string
	Err       error

	mu    sync.Mutex
	next  int
	Calls []string
}

func (s *Scripted) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, prompt)
	if s.Err != nil {
		return "", s.Err
	}
	if s.next >= len(s.Responses) {
		return "", nil
	}
	out := s.Responses[s.next]
	s.next++
	return out, nil
}

// CallCount reports how many times Generate ran.
func (s *Scripted) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}
