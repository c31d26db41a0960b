package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/richhaase/gerrit-review-agent/internal/agent"
	"github.com/richhaase/gerrit-review-agent/internal/config"
	"github.com/richhaase/gerrit-review-agent/internal/domain"
	"github.com/richhaase/gerrit-review-agent/internal/runner"
	"github.com/richhaase/gerrit-review-agent/internal/terminal"
)

var (
	baseURL       string
	username      string
	authPrefix    string
	tlsSkipVerify bool
	agentName     string
	model         string
	timeout       time.Duration
	promptText    string
	promptFile    string
	verbose       bool
	noConfig      bool
)

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review <change-number>",
		Short: "Review a Gerrit change and leave draft comments",
		Long: `Run the review agent against one Gerrit change. The agent inspects the
change through Gerrit tools and records findings as draft comments on the
current patchset. Drafts stay private until published from the Gerrit UI.

Credentials come from the environment: GERRIT_PASSWORD (HTTP password for
--username) or GERRIT_COOKIE (raw session cookie). They are never read from
the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: runReview,
	}

	// Configuration flags (resolved via config.Resolve with precedence: flag > env > config > default)
	cmd.Flags().StringVar(&baseURL, "base-url", "",
		"Gerrit server root URL (env: GERRIT_BASE_URL)")
	cmd.Flags().StringVarP(&username, "username", "u", "",
		"Gerrit username for Basic auth (env: GERRIT_USERNAME)")
	cmd.Flags().StringVar(&authPrefix, "auth-prefix", "",
		"Path prefix for authenticated REST calls (default: a/, env: GERRIT_AUTH_PREFIX)")
	cmd.Flags().BoolVar(&tlsSkipVerify, "tls-skip-verify", false,
		"Skip TLS certificate verification (env: GERRIT_TLS_SKIP_VERIFY)")
	cmd.Flags().StringVarP(&agentName, "agent", "a", "",
		"Agent CLI to run the review: claude (env: GRA_AGENT)")
	cmd.Flags().StringVarP(&model, "model", "m", "",
		"Model passed to the agent CLI (env: GRA_MODEL)")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0,
		"Review run timeout (default: 5m, env: GRA_TIMEOUT)")
	cmd.Flags().StringVar(&promptText, "prompt", "",
		"Review prompt template; {{CHANGE_NUMBER}} is substituted (env: GRA_PROMPT)")
	cmd.Flags().StringVar(&promptFile, "prompt-file", "",
		"Path to a file containing the review prompt template (env: GRA_PROMPT_FILE)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Print agent output as it arrives")
	cmd.Flags().BoolVar(&noConfig, "no-config", false,
		"Skip loading the .gra.yaml config file")

	setGroupedUsage(cmd)

	return cmd
}

func runReview(cmd *cobra.Command, args []string) error {
	// Disable colors if stderr is not a TTY
	terminal.DetectColorSupport()

	logger := terminal.NewLogger()

	changeNumber, err := parseChangeNumber(args[0])
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr)
		logger.Log("Interrupted, stopping the run...", terminal.StyleWarning)
		cancel()
	}()

	// Load config file (unless --no-config)
	var cfg *config.Config
	if !noConfig {
		result, err := config.LoadWithWarnings()
		if err != nil {
			logger.Logf(terminal.StyleError, "Config error: %v", err)
			return exitCode(domain.ExitError)
		}
		cfg = result.Config
		for _, warning := range result.Warnings {
			logger.Logf(terminal.StyleWarning, "Warning: %s", warning)
		}
	}

	envState := config.LoadEnvState()
	flagState := flagStateFrom(cmd)
	flagValues := config.ResolvedConfig{
		BaseURL:            baseURL,
		Username:           username,
		AuthPrefix:         authPrefix,
		InsecureSkipVerify: tlsSkipVerify,
		Agent:              agentName,
		Model:              model,
		Timeout:            timeout,
		Prompt:             promptText,
		PromptFile:         promptFile,
	}

	// Resolve final configuration (precedence: flags > env vars > config file > defaults)
	resolved := config.Resolve(cfg, envState, flagState, flagValues)

	promptTemplate, err := config.ResolvePrompt(cfg, envState, flagState, flagValues)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	ag, err := agent.NewAgent(resolved.Agent)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	workDir, err := os.Getwd()
	if err != nil {
		logger.Logf(terminal.StyleError, "Failed to determine working directory: %v", err)
		return exitCode(domain.ExitError)
	}

	r, err := runner.New(runner.Options{
		ChangeNumber:   changeNumber,
		WorkDir:        workDir,
		Verbose:        verbose,
		PromptTemplate: promptTemplate,
		Resolved:       resolved,
	}, ag, logger)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	return exitCode(r.Run(ctx))
}

// flagStateFrom records which configuration flags were set explicitly.
func flagStateFrom(cmd *cobra.Command) config.FlagState {
	return config.FlagState{
		BaseURLSet:            cmd.Flags().Changed("base-url"),
		UsernameSet:           cmd.Flags().Changed("username"),
		AuthPrefixSet:         cmd.Flags().Changed("auth-prefix"),
		InsecureSkipVerifySet: cmd.Flags().Changed("tls-skip-verify"),
		AgentSet:              cmd.Flags().Changed("agent"),
		ModelSet:              cmd.Flags().Changed("model"),
		TimeoutSet:            cmd.Flags().Changed("timeout"),
		PromptSet:             cmd.Flags().Changed("prompt"),
		PromptFileSet:         cmd.Flags().Changed("prompt-file"),
	}
}

// parseChangeNumber accepts a bare change number or a change URL whose last
// path segment is the number, e.g. https://gerrit.example.com/c/proj/+/12045.
func parseChangeNumber(arg string) (int, error) {
	s := strings.TrimSuffix(strings.TrimSpace(arg), "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("change number must be a positive integer, got %q", arg)
	}
	return n, nil
}
