package tools

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// PageTextTool strips markup from an HTML source page (statute texts,
// regulator guidance) so the result can be fed back into a reasoning loop.
type PageTextTool struct{}

func (t *PageTextTool) Name() string { return "html_to_text" }
func (t *PageTextTool) Description() string {
	return "Convert an HTML document to plain text; arguments: {\"html\": string}"
}

func (t *PageTextTool) Execute(_ context.Context, args map[string]any) (any, error) {
	src, _ := args["html"].(string)
	if src == "" {
		return nil, fmt.Errorf("missing html")
	}
	node, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var b strings.Builder
	collectText(node, &b, false)
	return compactWhitespace(b.String()), nil
}

func collectText(n *html.Node, b *strings.Builder, hidden bool) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript":
			hidden = true
		case "br", "p", "div", "li", "tr":
			b.WriteByte('\n')
		}
	}
	if !hidden && n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b, hidden)
	}
}

func compactWhitespace(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			out = append(out, strings.Join(fields, " "))
		}
	}
	return strings.Join(out, "\n")
}
