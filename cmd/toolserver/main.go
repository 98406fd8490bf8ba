package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/example/legal-agent-mesh/internal/audit"
	"github.com/example/legal-agent-mesh/internal/config"
	"github.com/example/legal-agent-mesh/internal/tools"
)

func main() {
	root := flag.String("root", ".", "project root containing config/ and data/")
	backendID := flag.String("backend", os.Getenv("TOOL_BACKEND"), "registry id of this tool backend")
	flag.Parse()

	if *backendID == "" {
		fmt.Fprintln(os.Stderr, "toolserver: -backend (or TOOL_BACKEND) is required")
		os.Exit(1)
	}
	cfg, err := config.Load(*root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "toolserver:", err)
		os.Exit(1)
	}
	entry, ok := cfg.Registry.Tools[*backendID]
	if !ok {
		fmt.Fprintf(os.Stderr, "toolserver: registry has no tool backend %q\n", *backendID)
		os.Exit(1)
	}
	logger := audit.NewSlog(cfg.LogLevel).With("backend", *backendID)

	registry, err := buildRegistry(*backendID, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "toolserver:", err)
		os.Exit(1)
	}
	srv := &tools.Server{Name: *backendID, Registry: registry, Log: logger}

	addr := fmt.Sprintf(":%d", entry.Port)
	logger.Info("tool backend listening", "addr", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// buildRegistry wires the capability set for a backend id. New backends are
// added here and in config/registry.yaml.
func buildRegistry(backendID string, cfg *config.Config) (*tools.Registry, error) {
	reg := tools.NewRegistry()
	switch backendID {
	case "contract_store":
		store, err := tools.OpenContractStore(filepath.Join(cfg.DataDir(), "contracts.csv"))
		if err != nil {
			return nil, err
		}
		reg.Register(&tools.QueryContractsTool{Store: store})
		reg.Register(&tools.GetContractTool{Store: store})
		reg.Register(&tools.ContractSchemaTool{Store: store})
		reg.Register(&tools.DocumentTextTool{})
		reg.Register(&tools.PageTextTool{})
	case "rule_engine":
		engine, err := tools.LoadRules(filepath.Join(cfg.DataDir(), "compliance_rules.yaml"))
		if err != nil {
			return nil, err
		}
		reg.Register(&tools.ValidateContractTool{Engine: engine})
		reg.Register(&tools.ListRulesTool{Engine: engine})
		reg.Register(&tools.EvaluateRuleTool{Engine: engine})
	default:
		return nil, fmt.Errorf("unknown tool backend %q", backendID)
	}
	return reg, nil
}
