// Package protocol implements the task contract shared by the manager and
// every worker endpoint: POST /task driving the
// processing → completed|input_required|failed state machine, plus the agent
// descriptor and health endpoints.
package protocol

// Task lifecycle states. processing is set on receipt; the other three are
// terminal.
const (
	StateProcessing    = "processing"
	StateCompleted     = "completed"
	StateInputRequired = "input_required"
	StateFailed        = "failed"
)

type Content struct {
	Text string `json:"text"`
}

type Message struct {
	Role    string  `json:"role,omitempty"`
	Content Content `json:"content"`
}

type Part struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Artifact struct {
	Parts []Part `json:"parts"`
}

type Status struct {
	State   string   `json:"state"`
	Message *Message `json:"message,omitempty"`
}

// TaskRequest is the inbound shape of POST /task.
type TaskRequest struct {
	ID      string  `json:"id,omitempty"`
	Message Message `json:"message"`
}

// Task is the response shape. One Task exists per request and is discarded
// after the response is written; there is no cross-request identity.
type Task struct {
	ID        string     `json:"id"`
	Status    Status     `json:"status"`
	Artifacts []Artifact `json:"artifacts"`
}

// Text returns the primary text artifact, or "" when none is present.
func (t *Task) Text() string {
	if t == nil || len(t.Artifacts) == 0 || len(t.Artifacts[0].Parts) == 0 {
		return ""
	}
	return t.Artifacts[0].Parts[0].Text
}

// Descriptor is served at /.well-known/agent.json.
type Descriptor struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Version      string       `json:"version"`
	URL          string       `json:"url"`
	Capabilities Capabilities `json:"capabilities"`
}

type Capabilities struct {
	Streaming         bool `json:"streaming"`
	PushNotifications bool `json:"pushNotifications"`
}
