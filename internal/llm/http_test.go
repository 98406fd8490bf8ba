package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPostJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "ok"})
	}))
	defer srv.Close()

	var out struct {
		Text string `json:"text"`
	}
	if err := postJSON(context.Background(), srv.URL, nil, map[string]string{"prompt": "p"}, &out); err != nil {
		t.Fatalf("postJSON: %v", err)
	}
	if out.Text != "ok" {
		t.Errorf("out = %+v", out)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 2 retries then success", calls.Load())
	}
}

func TestPostJSONGivesUpAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var out map[string]any
	if err := postJSON(context.Background(), srv.URL, nil, map[string]string{}, &out); err == nil {
		t.Fatal("want error after exhausted retries")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want exactly 3 attempts", calls.Load())
	}
}

func TestPostJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error": "bad key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	var out map[string]any
	if err := postJSON(context.Background(), srv.URL, nil, map[string]string{}, &out); err == nil {
		t.Fatal("want error on 401")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want no retry on 4xx", calls.Load())
	}
}

func TestPostJSONSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	var out map[string]any
	err := postJSON(context.Background(), srv.URL, map[string]string{"Authorization": "Bearer k"}, map[string]string{}, &out)
	if err != nil {
		t.Fatalf("postJSON: %v", err)
	}
}

func TestScriptedReplaysInOrder(t *testing.T) {
	s := Scripted{Responses: []string{"one", "two"}}
	ctx := context.Background()
	for i, want := range []string{"one", "two", ""} {
		got, err := s.Generate(ctx, "p")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got != want {
			t.Errorf("call %d = %q, want %q", i, got, want)
		}
	}
	if s.CallCount() != 3 {
		t.Errorf("CallCount = %d", s.CallCount())
	}
}

func TestNewFromEnvOffline(t *testing.T) {
	for _, k := range []string{"LLM_PROVIDER", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
	}
	c := NewFromEnv(context.Background())
	if _, ok := c.(*Scripted); !ok {
		t.Errorf("client = %T, want offline Scripted fallback", c)
	}
}

func TestClientTimeoutOverride(t *testing.T) {
	t.Setenv("LLM_HTTP_TIMEOUT_MS", "1500")
	if got := clientTimeout(); got != 1500*time.Millisecond {
		t.Errorf("clientTimeout = %v", got)
	}
	t.Setenv("LLM_HTTP_TIMEOUT_MS", "garbage")
	if got := clientTimeout(); got != 45*time.Second {
		t.Errorf("clientTimeout with bad value = %v, want default", got)
	}
}
