package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/example/legal-agent-mesh/internal/audit"
	"github.com/example/legal-agent-mesh/internal/config"
	"github.com/example/legal-agent-mesh/internal/llm"
	"github.com/example/legal-agent-mesh/internal/orchestrator"
	"github.com/example/legal-agent-mesh/internal/protocol"
)

func main() {
	root := flag.String("root", ".", "project root containing config/, prompts/ and data/")
	flag.Parse()

	cfg, err := config.Load(*root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "manager:", err)
		os.Exit(1)
	}
	logger := audit.NewSlog(cfg.LogLevel).With("agent", "manager")

	entry, ok := cfg.Agent("manager")
	if !ok {
		fmt.Fprintln(os.Stderr, "manager: registry has no manager entry")
		os.Exit(1)
	}

	ctx := context.Background()
	client := llm.NewFromEnv(ctx)

	var agents []orchestrator.AgentInfo
	for _, id := range cfg.WorkerIDs() {
		e, _ := cfg.Agent(id)
		agents = append(agents, orchestrator.AgentInfo{ID: id, Description: e.Description})
	}

	mgr := orchestrator.NewManager(orchestrator.ManagerConfig{
		LLM:      client,
		Registry: cfg.WorkerURLs(),
		Agents:   agents,
		Fallback: cfg.FallbackAgent(),
		Client:   &protocol.Client{},
		Audit:    audit.New(cfg.LogDir(), "manager", logger),
		Log:      logger,
	})

	handler := protocol.NewHandler(protocol.HandlerConfig{
		Name:        "Legal Reasoning Manager",
		Description: "Orchestrates legal analysis by coordinating clause extraction and compliance checking",
		URL:         entry.URL(),
		Process:     mgr.Process,
		Log:         logger,
	})

	addr := fmt.Sprintf(":%d", entry.Port)
	logger.Info("manager listening", "addr", addr, "workers", cfg.WorkerIDs())
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
