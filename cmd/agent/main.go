// Command agent prints a JSON performance report for a team's recent matches.
//
//	agent [-config path] [team_name] [last_n]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"football-agent/internal/agent"
	"football-agent/internal/config"
	"football-agent/internal/logging"
)

const (
	defaultTeam  = "Barcelona"
	defaultLastN = 5
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("agent", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config.json (default $CONFIG_PATH or ./config.json)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	team := defaultTeam
	lastN := defaultLastN
	if fs.NArg() > 0 {
		team = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		n, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			fmt.Fprintf(stderr, "last_n must be an integer, got %q\n", fs.Arg(1))
			return 2
		}
		lastN = n
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Config error: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingCredentials) {
			fmt.Fprintln(stderr, config.CredentialsHint)
			return 1
		}
		fmt.Fprintf(stderr, "Config error: %v\n", err)
		return 1
	}

	logger, err := logging.New("football-agent", cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := agent.NewFromConfig(cfg, nil, logger).Run(ctx, team, lastN)
	fmt.Fprintln(stdout, report)
	return 0
}
