package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"football-agent/internal/config"
)

func TestRun_MissingReport(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	config.ResetConfigForTest()
	t.Cleanup(config.ResetConfigForTest)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{}`), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfgPath, "-report", filepath.Join(dir, "missing.json")}, &stdout, &stderr)
	require.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Report error")
	assert.Empty(t, stdout.String(), "no banner before the report loads")
}

func TestRun_ZeroDurationPrintsBanner(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	config.ResetConfigForTest()
	t.Cleanup(config.ResetConfigForTest)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	reportPath := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"env":"test"}`), 0o644))
	require.NoError(t, os.WriteFile(reportPath, []byte(`{"team_summary":{}}`), 0o644))

	var stdout, stderr bytes.Buffer
	args := []string{"-config", cfgPath, "-report", reportPath, "-team", "Barcelona", "-opponent", "Girona", "-duration", "0"}
	require.Equal(t, 0, run(args, &stdout, &stderr), stderr.String())
	assert.Equal(t, "⚽ Starting LLM-based recommender for Barcelona vs Girona...\n\n", stdout.String())
}

func TestRun_InvalidLogLevel(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	config.ResetConfigForTest()
	t.Cleanup(config.ResetConfigForTest)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	reportPath := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"log_level":"loud"}`), 0o644))
	require.NoError(t, os.WriteFile(reportPath, []byte(`{"team_summary":{}}`), 0o644))

	var stdout, stderr bytes.Buffer
	args := []string{"-config", cfgPath, "-report", reportPath, "-duration", "0"}
	assert.NotEqual(t, 0, run(args, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "loud")
}
