package main

import (
	"os"

	"business-navigator/internal/bootstrap"
	"business-navigator/internal/shared/config"
	"business-navigator/internal/shared/server"
	"business-navigator/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("server.bootstrap_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.start", map[string]any{
		"addr":         addr,
		"env":          cfg.Env,
		"storage":      app.Backend,
		"llm_provider": cfg.LLMProvider,
	})

	if err := app.Router.Run(addr); err != nil {
		telemetry.Error("server.stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
