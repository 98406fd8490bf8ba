// Package tools implements the deterministic capabilities workers reason
// over — contract store queries, compliance rule evaluation, document text
// extraction — together with the HTTP backend that exposes them and the
// client workers use to bind to it.
package tools

import "context"

// Tool is one deterministic capability.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// Descriptor is the wire shape of a capability listing.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry holds the capabilities one backend serves, in registration order.
type Registry struct {
	order []string
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

func (r *Registry) Register(t Tool) {
	if _, ok := r.tools[t.Name()]; !ok {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, Descriptor{Name: name, Description: r.tools[name].Description()})
	}
	return out
}
