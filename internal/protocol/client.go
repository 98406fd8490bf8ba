package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultCallTimeout bounds one worker round trip.
const DefaultCallTimeout = 60 * time.Second

// Client sends tasks to agent endpoints. The zero value is usable.
type Client struct {
	HTTPClient *http.Client
	Timeout    time.Duration
}

// SendTask posts a query to baseURL/task and decodes the Task response.
// The call is bounded by the client timeout; expiry cancels only this call.
func (c *Client) SendTask(ctx context.Context, baseURL, query string) (*Task, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(TaskRequest{Message: Message{Content: Content{Text: query}}})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/task", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", res.StatusCode)
	}
	var task Task
	if err := json.NewDecoder(res.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("malformed task response: %w", err)
	}
	return &task, nil
}
