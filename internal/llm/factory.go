package llm

import (
	"context"
	"os"
	"strings"
)

// NewFromEnv returns a Client based on environment variables.
//
//   - LLM_PROVIDER=gemini|openai|anthropic, optional LLM_MODEL
//   - Gemini:    GOOGLE_API_KEY
//   - OpenAI:    OPENAI_API_KEY, optional OPENAI_API_BASE
//   - Anthropic: ANTHROPIC_API_KEY, optional ANTHROPIC_API_URL
//
// With no provider configured it falls back to a Scripted client, which
// keeps every agent serving degraded answers instead of refusing to start.
func NewFromEnv(ctx context.Context) Client {
	prov := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	switch prov {
	case "gemini":
		if c := geminiFromEnv(ctx); c != nil {
			return c
		}
	case "openai":
		if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
			return &OpenAIClient{APIKey: key, Model: modelDefault("gpt-4o-mini")}
		}
	case "anthropic":
		if key := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); key != "" {
			return &AnthropicClient{APIKey: key, Model: modelDefault("claude-3-5-sonnet-latest")}
		}
	}

	// Auto-detect by key presence when the provider is unset.
	if c := geminiFromEnv(ctx); c != nil {
		return c
	}
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		return &OpenAIClient{APIKey: key, Model: modelDefault("gpt-4o-mini")}
	}
	if key := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); key != "" {
		return &AnthropicClient{APIKey: key, Model: modelDefault("claude-3-5-sonnet-latest")}
	}
	return &Scripted{}
}

func geminiFromEnv(ctx context.Context) Client {
	key := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	if key == "" {
		return nil
	}
	c, err := NewGemini(ctx, key, modelDefault("gemini-1.5-flash"))
	if err != nil {
		return nil
	}
	return c
}

func modelDefault(def string) string {
	if v := strings.TrimSpace(os.Getenv("LLM_MODEL")); v != "" {
		return v
	}
	return def
}
