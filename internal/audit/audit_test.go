package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestEventAppendsJSONL(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, "Clause Agent", nil)
	l.Event("TASK_RECEIVED", map[string]any{"query": "q1"})
	l.Event("TASK_COMPLETED", map[string]any{"steps": 2})

	f, err := os.Open(filepath.Join(dir, "clauseagent_events.jsonl"))
	if err != nil {
		t.Fatalf("open trail: %v", err)
	}
	defer f.Close()

	var types []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec struct {
			ID        string         `json:"id"`
			Timestamp string         `json:"timestamp"`
			Source    string         `json:"source"`
			Type      string         `json:"type"`
			Data      map[string]any `json:"data"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("line not valid JSON: %v", err)
		}
		if rec.ID == "" || rec.Timestamp == "" {
			t.Errorf("record missing id or timestamp: %+v", rec)
		}
		if rec.Source != "Clause Agent" {
			t.Errorf("source = %q", rec.Source)
		}
		types = append(types, rec.Type)
	}
	if len(types) != 2 || types[0] != "TASK_RECEIVED" || types[1] != "TASK_COMPLETED" {
		t.Errorf("types = %v", types)
	}
}

func TestNilLoggerIsNoOp(t *testing.T) {
	var l *Logger
	l.Event("ANYTHING", nil) // must not panic
}

func TestUnwritableDirDoesNotFail(t *testing.T) {
	l := New("/proc/definitely/not/writable", "x", nil)
	l.Event("EVENT", map[string]any{"k": "v"}) // best-effort, no panic
}
