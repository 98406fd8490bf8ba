package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echo arguments back" }
func (echoTool) Execute(_ context.Context, args map[string]any) (any, error) {
	return args, nil
}

type failTool struct{}

func (failTool) Name() string        { return "fail" }
func (failTool) Description() string { return "always fails" }
func (failTool) Execute(context.Context, map[string]any) (any, error) {
	return nil, errors.New("backend exploded")
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := NewRegistry()
	reg.Register(echoTool{})
	reg.Register(failTool{})
	srv := httptest.NewServer((&Server{Name: "test", Registry: reg}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestCapabilitiesRoundTrip(t *testing.T) {
	srv := testServer(t)
	var c Client
	bindings, err := c.Capabilities(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Capabilities: %v", err)
	}
	want := []Binding{
		{Name: "echo", Description: "echo arguments back", URL: srv.URL},
		{Name: "fail", Description: "always fails", URL: srv.URL},
	}
	if !reflect.DeepEqual(bindings, want) {
		t.Errorf("bindings = %+v, want registration order %+v", bindings, want)
	}
}

func TestInvokeRoundTrip(t *testing.T) {
	srv := testServer(t)
	var c Client
	binding := Binding{Name: "echo", URL: srv.URL}
	out, err := c.Invoke(context.Background(), binding, map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if m, ok := out.(map[string]any); !ok || m["k"] != "v" {
		t.Errorf("out = %v", out)
	}
}

func TestInvokeToolErrorInBody(t *testing.T) {
	srv := testServer(t)
	var c Client
	_, err := c.Invoke(context.Background(), Binding{Name: "fail", URL: srv.URL}, nil)
	if err == nil || !strings.Contains(err.Error(), "backend exploded") {
		t.Fatalf("err = %v, want tool error surfaced", err)
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	srv := testServer(t)
	var c Client
	_, err := c.Invoke(context.Background(), Binding{Name: "ghost", URL: srv.URL}, nil)
	if err == nil || !strings.Contains(err.Error(), "unknown tool") {
		t.Fatalf("err = %v, want unknown tool error", err)
	}
}

func TestInvokeBadRequestIsHTTPError(t *testing.T) {
	srv := testServer(t)
	res, err := http.Post(srv.URL+"/invoke", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed body", res.StatusCode)
	}
}

func TestRegistryReplaceKeepsOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(echoTool{})
	reg.Register(failTool{})
	reg.Register(echoTool{}) // re-register must not duplicate
	list := reg.List()
	if len(list) != 2 || list[0].Name != "echo" || list[1].Name != "fail" {
		t.Errorf("list = %+v", list)
	}
}
