package orchestrator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/example/legal-agent-mesh/internal/protocol"
)

// CallResult is the outcome of one dispatched worker call. Failures are
// values, never errors: a timeout, transport fault, non-OK status or
// malformed body all land here as Success=false.
type CallResult struct {
	Agent       string
	URL         string
	Success     bool
	Task        *protocol.Task
	ErrorReason string
}

// Dispatcher executes a plan against worker endpoints, isolating each call's
// failure from its siblings.
type Dispatcher struct {
	Registry map[string]string // agent id → base URL, immutable after start
	Client   *protocol.Client
	Log      *slog.Logger
}

type resolvedCall struct {
	agent string
	url   string
}

// Dispatch resolves the plan against the registry and issues the calls.
// Unknown agent ids are dropped from the call set. The result sequence
// preserves plan order regardless of completion order, and a failing call
// never halts or cancels the rest of the plan.
func (d *Dispatcher) Dispatch(ctx context.Context, query string, plan Plan) []CallResult {
	var calls []resolvedCall
	for _, agent := range plan.Agents {
		url, ok := d.Registry[agent]
		if !ok {
			d.logger().Warn("unknown agent in plan, skipping", "agent", agent)
			continue
		}
		calls = append(calls, resolvedCall{agent: agent, url: url})
	}

	results := make([]CallResult, len(calls))
	if plan.Parallel {
		var wg sync.WaitGroup
		for i, call := range calls {
			wg.Add(1)
			go func(i int, call resolvedCall) {
				defer wg.Done()
				results[i] = d.call(ctx, call, query)
			}(i, call)
		}
		wg.Wait()
	} else {
		// Best-effort sequential: call N+1 starts only once call N is
		// known, but a failure does not stop the sequence.
		for i, call := range calls {
			results[i] = d.call(ctx, call, query)
		}
	}
	return results
}

func (d *Dispatcher) call(ctx context.Context, call resolvedCall, query string) CallResult {
	client := d.Client
	if client == nil {
		client = &protocol.Client{}
	}
	task, err := client.SendTask(ctx, call.url, query)
	if err != nil {
		d.logger().Warn("worker call failed", "agent", call.agent, "err", err)
		return CallResult{Agent: call.agent, URL: call.url, ErrorReason: err.Error()}
	}
	return CallResult{Agent: call.agent, URL: call.url, Success: true, Task: task}
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}
