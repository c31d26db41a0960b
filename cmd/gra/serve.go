package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/richhaase/gerrit-review-agent/internal/config"
	"github.com/richhaase/gerrit-review-agent/internal/gerrit"
	"github.com/richhaase/gerrit-review-agent/internal/mcp"
	"github.com/richhaase/gerrit-review-agent/internal/tools"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Gerrit tool server over stdio",
		Long: `Serve the Gerrit tool catalog over line-delimited JSON-RPC on stdin and
stdout. gra review spawns this command for the agent; it is rarely run by
hand. Diagnostics go to stderr; stdout carries only protocol frames.

Connection settings resolve from the environment (GERRIT_BASE_URL,
GERRIT_USERNAME, GERRIT_PASSWORD, GERRIT_COOKIE, GERRIT_AUTH_PREFIX,
GERRIT_TLS_SKIP_VERIFY) and from .gra.yaml.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	result, err := config.LoadWithWarnings()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}

	resolved := config.Resolve(result.Config, config.LoadEnvState(), config.FlagState{}, config.ResolvedConfig{})
	if resolved.BaseURL == "" {
		return fmt.Errorf("gerrit base URL is not configured; set GERRIT_BASE_URL or gerrit.base_url in %s", config.ConfigFileName)
	}

	client := gerrit.NewClient(resolved.Credentials())
	registry := tools.NewGerritRegistry(client)
	server := mcp.NewServer(registry, mcp.ServerInfo{Name: "gra", Version: version}, logger)

	return server.Serve(cmd.Context(), os.Stdin, os.Stdout)
}
