// Package audit provides the append-only JSONL event trail kept per agent,
// plus slog setup shared by all binaries.
package audit

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger appends structured events to logs/<source>_events.jsonl. Writes are
// best-effort: an unwritable log directory must never fail a request.
type Logger struct {
	mu     sync.Mutex
	path   string
	source string
	log    *slog.Logger
}

type record struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Source    string         `json:"source"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
}

func New(dir, source string, log *slog.Logger) *Logger {
	name := strings.ToLower(strings.ReplaceAll(source, " ", "")) + "_events.jsonl"
	return &Logger{path: filepath.Join(dir, name), source: source, log: log}
}

// Event appends one audit record. A nil Logger is a no-op so tests can
// construct components without an audit trail.
func (l *Logger) Event(eventType string, data map[string]any) {
	if l == nil {
		return
	}
	rec := record{
		ID:        uuid.NewString(),
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Source:    l.source,
		Type:      eventType,
		Data:      data,
	}
	line, err := json.Marshal(rec)
	if err != nil {
		l.warn("marshal audit event", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		l.warn("create log dir", err)
		return
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		l.warn("open audit log", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		l.warn("append audit event", err)
	}
	if l.log != nil {
		l.log.Info("audit", "type", eventType)
	}
}

func (l *Logger) warn(msg string, err error) {
	if l.log != nil {
		l.log.Warn(msg, "err", err)
	}
}

// NewSlog builds the process logger used by every binary.
func NewSlog(level string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lv = slog.LevelDebug
	case "warn", "warning":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}
