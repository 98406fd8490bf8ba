package tools

import (
	"context"
	"strings"
	"testing"
)

func TestPageTextTool(t *testing.T) {
	var tool PageTextTool
	src := `<html><head><style>p { color: red }</style><script>alert(1)</script></head>
<body><h1>Statute 42</h1><p>Section   one.</p><ul><li>clause a</li><li>clause b</li></ul>
<noscript>enable js</noscript></body></html>`
	out, err := tool.Execute(context.Background(), map[string]any{"html": src})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	text := out.(string)
	if !strings.Contains(text, "Statute 42") || !strings.Contains(text, "Section one.") {
		t.Errorf("text = %q", text)
	}
	if !strings.Contains(text, "clause a\nclause b") {
		t.Errorf("list items not on separate lines: %q", text)
	}
	for _, hidden := range []string{"alert", "color: red", "enable js"} {
		if strings.Contains(text, hidden) {
			t.Errorf("hidden content %q leaked into %q", hidden, text)
		}
	}
}

func TestPageTextToolMissingInput(t *testing.T) {
	var tool PageTextTool
	if _, err := tool.Execute(context.Background(), map[string]any{}); err == nil {
		t.Fatal("want error without html argument")
	}
}

func TestCompactWhitespace(t *testing.T) {
	got := compactWhitespace("  a   b \n\n\n c\n   \n")
	if got != "a b\nc" {
		t.Errorf("got %q", got)
	}
}
