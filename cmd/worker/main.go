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
	"github.com/example/legal-agent-mesh/internal/protocol"
	"github.com/example/legal-agent-mesh/internal/worker"
)

func main() {
	root := flag.String("root", ".", "project root containing config/, prompts/ and data/")
	agentID := flag.String("agent", os.Getenv("AGENT_NAME"), "registry id of this worker")
	flag.Parse()

	if *agentID == "" {
		fmt.Fprintln(os.Stderr, "worker: -agent (or AGENT_NAME) is required")
		os.Exit(1)
	}
	cfg, err := config.Load(*root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
		os.Exit(1)
	}
	entry, ok := cfg.Agent(*agentID)
	if !ok {
		fmt.Fprintf(os.Stderr, "worker: registry has no agent %q\n", *agentID)
		os.Exit(1)
	}
	logger := audit.NewSlog(cfg.LogLevel).With("agent", *agentID)

	w := &worker.Worker{
		Name:    *agentID,
		Prompt:  cfg.LoadPrompt(*agentID),
		LLM:     llm.NewFromEnv(context.Background()),
		Sources: cfg.ToolURLs(entry.Tools),
		Audit:   audit.New(cfg.LogDir(), *agentID, logger),
		Log:     logger,
	}

	handler := protocol.NewHandler(protocol.HandlerConfig{
		Name:        *agentID,
		Description: entry.Description,
		URL:         entry.URL(),
		Process:     w.Process,
		Log:         logger,
	})

	addr := fmt.Sprintf(":%d", entry.Port)
	logger.Info("worker listening", "addr", addr, "tools", entry.Tools)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
