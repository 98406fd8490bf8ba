package tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	pdfx "github.com/ledongthuc/pdf"
)

const (
	maxDocumentBytes = 20 << 20
	maxDocumentPages = 20
)

// DocumentTextTool extracts plain text from an uploaded contract PDF so a
// worker can reason over clauses that are not in the structured store.
type DocumentTextTool struct{}

func (t *DocumentTextTool) Name() string { return "extract_document_text" }
func (t *DocumentTextTool) Description() string {
	return "Extract plain text from a base64-encoded PDF; arguments: {\"data_base64\": string, \"max_pages\": number}"
}

func (t *DocumentTextTool) Execute(_ context.Context, args map[string]any) (any, error) {
	data, _ := args["data_base64"].(string)
	if data == "" {
		return nil, fmt.Errorf("missing data_base64")
	}
	// Allow data: URIs.
	if i := strings.Index(data, ","); i != -1 {
		data = data[i+1:]
	}
	buf, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if len(buf) > maxDocumentBytes {
		return nil, fmt.Errorf("document too large: %d bytes", len(buf))
	}

	reader, err := pdfx.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	pages := reader.NumPage()
	limit := intArg(args, "max_pages", maxDocumentPages)
	if pages < limit {
		limit = pages
	}

	var out strings.Builder
	extracted := 0
	for page := 1; page <= limit; page++ {
		p := reader.Page(page)
		if p.V.IsNull() {
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if s := strings.TrimSpace(txt); s != "" {
			out.WriteString(s)
			out.WriteString("\n\n")
			extracted++
		}
	}
	return map[string]any{
		"text":        strings.TrimSpace(out.String()),
		"pages_total": pages,
		"pages_read":  extracted,
	}, nil
}

func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case int:
		if v > 0 {
			return v
		}
	}
	return def
}
