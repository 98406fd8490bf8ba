package protocol

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSendTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/task" {
			t.Errorf("path = %q, want /task", r.URL.Path)
		}
		var req TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Message.Content.Text != "list contracts" {
			t.Errorf("query = %q", req.Message.Content.Text)
		}
		json.NewEncoder(w).Encode(Task{
			Status:    Status{State: StateCompleted},
			Artifacts: []Artifact{{Parts: []Part{{Text: "CTR-001"}}}},
		})
	}))
	defer srv.Close()

	var c Client
	task, err := c.SendTask(context.Background(), srv.URL, "list contracts")
	if err != nil {
		t.Fatalf("SendTask: %v", err)
	}
	if task.Status.State != StateCompleted || task.Text() != "CTR-001" {
		t.Errorf("task = %+v", task)
	}
}

func TestSendTaskNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	var c Client
	if _, err := c.SendTask(context.Background(), srv.URL, "q"); err == nil {
		t.Fatal("want error on HTTP 500")
	} else if !strings.Contains(err.Error(), "500") {
		t.Errorf("err = %v, want status code in message", err)
	}
}

func TestSendTaskMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	var c Client
	if _, err := c.SendTask(context.Background(), srv.URL, "q"); err == nil {
		t.Fatal("want error on malformed body")
	}
}

func TestSendTaskTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := Client{Timeout: 50 * time.Millisecond}
	start := time.Now()
	if _, err := c.SendTask(context.Background(), srv.URL, "q"); err == nil {
		t.Fatal("want timeout error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took %v, expected well under the default", elapsed)
	}
}
