package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/richhaase/gerrit-review-agent/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gra configuration",
		Long:  "View and initialize gra configuration files and environment variables.",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display resolved configuration",
		Long:  "Show the fully resolved configuration from defaults, config file, and environment variables. Secrets are masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := config.LoadWithWarnings()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			resolved := config.Resolve(result.Config, config.LoadEnvState(), config.FlagState{}, config.ResolvedConfig{})

			fmt.Print(renderResolved(resolved, result.Path))
			return nil
		},
	}
}

// renderResolved formats the effective configuration. Secret values show
// only whether they are set.
func renderResolved(resolved config.ResolvedConfig, path string) string {
	var b strings.Builder

	if path != "" {
		fmt.Fprintf(&b, "Config file: %s\n", path)
	} else {
		b.WriteString("Config file: (none found)\n")
	}
	b.WriteString("\nResolved configuration:\n\n")
	fmt.Fprintf(&b, "  %-18s %s\n", "base_url:", orDefault(resolved.BaseURL, "(not set)"))
	fmt.Fprintf(&b, "  %-18s %s\n", "username:", orDefault(resolved.Username, "(not set)"))
	fmt.Fprintf(&b, "  %-18s %s\n", "password:", maskSecret(resolved.Password))
	fmt.Fprintf(&b, "  %-18s %s\n", "cookie:", maskSecret(resolved.Cookie))
	fmt.Fprintf(&b, "  %-18s %s\n", "auth_prefix:", resolved.AuthPrefix)
	fmt.Fprintf(&b, "  %-18s %t\n", "tls_skip_verify:", resolved.InsecureSkipVerify)
	fmt.Fprintf(&b, "  %-18s %s\n", "agent:", resolved.Agent)
	fmt.Fprintf(&b, "  %-18s %s\n", "model:", orDefault(resolved.Model, "(agent default)"))
	fmt.Fprintf(&b, "  %-18s %s\n", "timeout:", resolved.Timeout)
	fmt.Fprintf(&b, "  %-18s %s\n", "prompt:", promptLabel(resolved.Prompt))
	fmt.Fprintf(&b, "  %-18s %s\n", "prompt_file:", orDefault(resolved.PromptFile, "(not set)"))

	return b.String()
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "********"
}

func promptLabel(prompt string) string {
	if prompt == "" {
		return "(built-in)"
	}
	return "(custom)"
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a starter .gra.yaml file",
		Long:  "Create a commented .gra.yaml configuration file in the current directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to determine working directory: %w", err)
			}
			configPath := filepath.Join(cwd, config.ConfigFileName)

			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("%s already exists; remove it first or edit it directly", configPath)
			}

			starter := `# gra configuration file
# Values here are overridden by environment variables and flags.

# Gerrit server connection. Credentials are environment-only: set
# GERRIT_PASSWORD (HTTP password) or GERRIT_COOKIE (session cookie).
# gerrit:
#   base_url: https://gerrit.example.com
#   username: reviewer
#   auth_prefix: a/
#   tls_skip_verify: false

# Agent CLI used for reviews (default: claude)
# agent: claude

# Model passed to the agent CLI (default: the agent's own default)
# model: ""

# Review run timeout, Go duration format or integer seconds (default: 5m)
# timeout: 5m

# Review prompt template; {{CHANGE_NUMBER}} is substituted
# prompt: ""

# Path to a file containing the prompt template
# prompt_file: ""
`
			if err := os.WriteFile(configPath, []byte(starter), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", configPath, err)
			}

			fmt.Printf("Created %s with default settings (commented out).\n", configPath)
			return nil
		},
	}
}
