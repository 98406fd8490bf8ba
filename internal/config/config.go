package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is loaded once at process start and passed explicitly to every
// component. There is no package-level singleton.
type Config struct {
	Root     string
	LogLevel string
	Registry Registry
}

// Registry describes the static mesh: agent endpoints and the tool backends
// workers may bind to. It is immutable after Load returns.
type Registry struct {
	DefaultAgent string           `yaml:"default_agent"`
	Agents       map[string]Entry `yaml:"agents"`
	Tools        map[string]Entry `yaml:"tools"`
}

// Entry is one registry row. Enabled defaults to true when omitted.
type Entry struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Description string   `yaml:"description"`
	Enabled     *bool    `yaml:"enabled"`
	Tools       []string `yaml:"tools"`
}

func (e Entry) IsEnabled() bool { return e.Enabled == nil || *e.Enabled }

// URL returns the base URL for the entry, e.g. "http://localhost:8101".
func (e Entry) URL() string {
	host := e.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, e.Port)
}

// Load reads .env (optional) and config/registry.yaml under root.
func Load(root string) (*Config, error) {
	if root == "" {
		root = "."
	}
	// .env is optional; environment already set wins.
	_ = godotenv.Load(filepath.Join(root, ".env"))

	cfg := &Config{
		Root:     root,
		LogLevel: envDefault("LOG_LEVEL", "info"),
	}

	regPath := filepath.Join(root, "config", "registry.yaml")
	raw, err := os.ReadFile(regPath)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg.Registry); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	if len(cfg.Registry.Agents) == 0 {
		return nil, fmt.Errorf("registry %s defines no agents", regPath)
	}
	return cfg, nil
}

// Agent returns the registry entry for an agent id.
func (c *Config) Agent(id string) (Entry, bool) {
	e, ok := c.Registry.Agents[id]
	return e, ok
}

// WorkerURLs resolves every enabled agent except the manager into a
// base URL. The result is the identifier→URL map the dispatcher consumes.
func (c *Config) WorkerURLs() map[string]string {
	out := make(map[string]string)
	for id, e := range c.Registry.Agents {
		if id == "manager" || !e.IsEnabled() {
			continue
		}
		out[id] = e.URL()
	}
	return out
}

// WorkerIDs returns the enabled worker identifiers in stable order.
func (c *Config) WorkerIDs() []string {
	ids := make([]string, 0, len(c.Registry.Agents))
	for id := range c.WorkerURLs() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FallbackAgent is the worker the planner degrades to. Defaults to the
// first enabled worker when the registry does not name one.
func (c *Config) FallbackAgent() string {
	if c.Registry.DefaultAgent != "" {
		return c.Registry.DefaultAgent
	}
	if ids := c.WorkerIDs(); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// ToolURLs resolves tool backend ids into base URLs, skipping disabled
// and unknown entries.
func (c *Config) ToolURLs(ids []string) []string {
	var out []string
	for _, id := range ids {
		e, ok := c.Registry.Tools[id]
		if !ok || !e.IsEnabled() {
			continue
		}
		out = append(out, e.URL())
	}
	return out
}

// LoadPrompt reads prompts/<name>.txt. Missing files return "" so callers
// can fall back to a built-in prompt.
func (c *Config) LoadPrompt(name string) string {
	raw, err := os.ReadFile(filepath.Join(c.Root, "prompts", name+".txt"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// LogDir is where operational logs and the audit trail land.
func (c *Config) LogDir() string { return filepath.Join(c.Root, "logs") }

// DataDir holds the sample contract data and compliance rules.
func (c *Config) DataDir() string { return filepath.Join(c.Root, "data") }

func envDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
