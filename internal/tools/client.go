package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Binding is one remote capability a worker may invoke.
type Binding struct {
	Name        string
	Description string
	URL         string // backend base URL
}

// Client resolves and invokes capabilities on tool backends.
type Client struct {
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Capabilities lists the tools served by one backend.
func (c *Client) Capabilities(ctx context.Context, baseURL string) ([]Binding, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/capabilities", nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("capabilities: HTTP %d from %s", res.StatusCode, baseURL)
	}
	var body struct {
		Tools []Descriptor `json:"tools"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("capabilities: %w", err)
	}
	out := make([]Binding, 0, len(body.Tools))
	for _, d := range body.Tools {
		out = append(out, Binding{Name: d.Name, Description: d.Description, URL: baseURL})
	}
	return out, nil
}

// Invoke runs one capability. A tool-level error reported by the backend is
// returned as an error so the caller can feed it back as an observation.
func (c *Client) Invoke(ctx context.Context, b Binding, args map[string]any) (any, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	payload, err := json.Marshal(invokeRequest{Name: b.Name, Arguments: args})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.URL+"/invoke", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invoke %s: HTTP %d", b.Name, res.StatusCode)
	}
	var body invokeResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("invoke %s: %w", b.Name, err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("%s", body.Error)
	}
	return body.Result, nil
}

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
