package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"football-agent/internal/agent"
	"football-agent/internal/api"
	"football-agent/internal/broadcast"
	"football-agent/internal/config"
	"football-agent/internal/llm"
	"football-agent/internal/logging"
)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, config.CredentialsHint)
		os.Exit(1)
	}

	logger, err := logging.New("football-server", cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sinks := broadcast.FromConfig(cfg, logger)
	defer sinks.Close()

	queue := llm.NewQueue(llm.NewGeminiFromConfig(cfg, logger), llm.QueueConfig{
		MaxConcurrent:       cfg.Gemini.MaxConcurrent,
		CriticalQueueSize:   cfg.Gemini.QueueSize,
		BackgroundQueueSize: cfg.Gemini.QueueSize * 5,
	}, logger)
	defer queue.Stop()

	deps := api.Deps{
		Reporter: agent.NewFromConfig(cfg, queue.With(llm.PriorityCritical), logger),
		Model:    queue.With(llm.PriorityBackground),
		Logger:   logger,
	}
	if sinks.Len() > 0 {
		deps.Publisher = sinks
	}

	r := api.SetupRouter(cfg, deps)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", zap.String("addr", addr), zap.String("subpath", cfg.Server.Subpath))
	if err := r.Run(addr); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}
