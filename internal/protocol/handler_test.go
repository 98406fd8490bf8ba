package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postTask(t *testing.T, h http.Handler, body string) *Task {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/task", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var task Task
	if err := json.NewDecoder(rec.Body).Decode(&task); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return &task
}

func TestHandlerCompleted(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Name: "test",
		Process: func(_ context.Context, query string) (string, error) {
			return "answer to: " + query, nil
		},
	})
	task := postTask(t, h, `{"id":"t-1","message":{"content":{"text":"hello"}}}`)
	if task.Status.State != StateCompleted {
		t.Fatalf("state = %q, want %q", task.Status.State, StateCompleted)
	}
	if task.ID != "t-1" {
		t.Errorf("id = %q, want echoed t-1", task.ID)
	}
	if got := task.Text(); got != "answer to: hello" {
		t.Errorf("artifact text = %q", got)
	}
}

func TestHandlerEmptyQueryRequiresInput(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Name: "test",
		Process: func(context.Context, string) (string, error) {
			t.Fatal("process must not run for an empty query")
			return "", nil
		},
	})
	for _, body := range []string{
		`{"message":{"content":{"text":""}}}`,
		`{"message":{"content":{"text":"   "}}}`,
		`{"message":{}}`,
	} {
		task := postTask(t, h, body)
		if task.Status.State != StateInputRequired {
			t.Errorf("body %s: state = %q, want %q", body, task.Status.State, StateInputRequired)
		}
		if len(task.Artifacts) != 0 {
			t.Errorf("body %s: artifacts = %d, want empty", body, len(task.Artifacts))
		}
		if task.Status.Message == nil || task.Status.Message.Content.Text == "" {
			t.Errorf("body %s: missing prompt-for-input message", body)
		}
	}
}

func TestHandlerProcessErrorFails(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Name: "test",
		Process: func(context.Context, string) (string, error) {
			return "", errors.New("registry corrupted")
		},
	})
	task := postTask(t, h, `{"message":{"content":{"text":"q"}}}`)
	if task.Status.State != StateFailed {
		t.Fatalf("state = %q, want %q", task.Status.State, StateFailed)
	}
	if msg := task.Status.Message; msg == nil || !strings.Contains(msg.Content.Text, "registry corrupted") {
		t.Errorf("failed message = %+v, want error text present", msg)
	}
	if len(task.Artifacts) != 0 {
		t.Errorf("artifacts = %d, want empty on failure", len(task.Artifacts))
	}
}

func TestHandlerPanicFails(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Name: "test",
		Process: func(context.Context, string) (string, error) {
			panic("nil registry map")
		},
	})
	task := postTask(t, h, `{"message":{"content":{"text":"q"}}}`)
	if task.Status.State != StateFailed {
		t.Fatalf("state = %q, want %q after panic", task.Status.State, StateFailed)
	}
	if msg := task.Status.Message; msg == nil || !strings.Contains(msg.Content.Text, "nil registry map") {
		t.Errorf("failed message = %+v, want panic text present", msg)
	}
}

func TestHandlerMalformedBodyFails(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Name:    "test",
		Process: func(context.Context, string) (string, error) { return "ok", nil },
	})
	task := postTask(t, h, `{not json`)
	if task.Status.State != StateFailed {
		t.Fatalf("state = %q, want %q", task.Status.State, StateFailed)
	}
}

func TestHandlerDescriptorAndHealth(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Name:        "clause",
		Description: "clause extraction",
		URL:         "http://localhost:8101",
		Process:     func(context.Context, string) (string, error) { return "", nil },
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/agent.json", nil))
	var desc Descriptor
	if err := json.NewDecoder(rec.Body).Decode(&desc); err != nil {
		t.Fatalf("decode descriptor: %v", err)
	}
	if desc.Name != "clause" || desc.URL != "http://localhost:8101" || desc.Version != "1.0.0" {
		t.Errorf("descriptor = %+v", desc)
	}
	if desc.Capabilities.Streaming || desc.Capabilities.PushNotifications {
		t.Errorf("capabilities must be false: %+v", desc.Capabilities)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var health map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "healthy" || health["agent"] != "clause" {
		t.Errorf("health = %v", health)
	}
}
