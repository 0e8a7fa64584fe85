// Command recommender streams simulated in-game tactical recommendations
// built on a report produced by the agent command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"football-agent/internal/broadcast"
	"football-agent/internal/config"
	"football-agent/internal/llm"
	"football-agent/internal/logging"
	"football-agent/internal/recommender"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("recommender", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config.json (default $CONFIG_PATH or ./config.json)")
	team := fs.String("team", "Barcelona", "team to advise")
	opponent := fs.String("opponent", "Real Madrid", "opponent team")
	reportPath := fs.String("report", "report.json", "JSON report written by the agent command")
	duration := fs.Int("duration", -1, "number of iterations (default from config, 3)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Config error: %v\n", err)
		return 1
	}
	if err := cfg.ValidateGemini(); err != nil {
		if errors.Is(err, config.ErrMissingCredentials) {
			fmt.Fprintln(stderr, "Please set GEMINI_API_KEY in your environment or .env")
			return 1
		}
		fmt.Fprintf(stderr, "Config error: %v\n", err)
		return 1
	}

	insights, err := recommender.LoadReport(*reportPath)
	if err != nil {
		fmt.Fprintf(stderr, "Report error (%s): %v\n", *reportPath, err)
		return 1
	}

	logger, err := logging.New("football-recommender", cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	sinks := broadcast.FromConfig(cfg, logger)
	defer sinks.Close()

	loop := recommender.NewLoop(*team, *opponent, insights, llm.NewGeminiFromConfig(cfg, logger))
	loop.Duration = cfg.Recommender.Duration
	if *duration >= 0 {
		loop.Duration = *duration
	}
	loop.Interval = cfg.Recommender.Interval()
	loop.Logger = logger
	if sinks.Len() > 0 {
		loop.Publisher = sinks
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loop.Run(ctx, stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("recommender stopped", zap.Error(err))
		return 1
	}
	return 0
}
