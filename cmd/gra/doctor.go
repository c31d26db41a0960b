package main

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/richhaase/gerrit-review-agent/internal/agent"
	"github.com/richhaase/gerrit-review-agent/internal/config"
	"github.com/richhaase/gerrit-review-agent/internal/domain"
	"github.com/richhaase/gerrit-review-agent/internal/gerrit"
	"github.com/richhaase/gerrit-review-agent/internal/terminal"
)

// reachabilityTimeout bounds the Gerrit connectivity probe.
const reachabilityTimeout = 10 * time.Second

type checkStatus int

const (
	checkPass checkStatus = iota
	checkWarn
	checkFail
)

// checkRow is one line of doctor output.
type checkRow struct {
	status checkStatus
	label  string
	detail string
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the local setup for review runs",
		Long: `Verify that everything a review run needs is in place: the agent CLI on
PATH, a configured Gerrit server, credentials, and server reachability.
Warnings alone do not fail; exits 1 when any hard check fails.`,
		RunE: runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	terminal.DetectColorSupport()
	logger := terminal.NewLogger()

	result, err := config.LoadWithWarnings()
	if err != nil {
		logger.Logf(terminal.StyleError, "Config error: %v", err)
		return exitCode(domain.ExitChecksFailed)
	}
	for _, warning := range result.Warnings {
		logger.Logf(terminal.StyleWarning, "Warning: %s", warning)
	}

	resolved := config.Resolve(result.Config, config.LoadEnvState(), config.FlagState{}, config.ResolvedConfig{})

	rows := runChecks(cmd.Context(), resolved)
	fmt.Print(renderChecks(rows))

	if hasFailure(rows) {
		logger.Log("Setup is not ready; fix the failed checks above.", terminal.StyleError)
		return exitCode(domain.ExitChecksFailed)
	}
	logger.Log("Ready to review.", terminal.StyleSuccess)
	return nil
}

// runChecks runs the setup checks in order. Checks that depend on the base
// URL are skipped when it is missing, since they could only repeat that
// failure.
func runChecks(ctx context.Context, resolved config.ResolvedConfig) []checkRow {
	rows := []checkRow{agentCheck(resolved.Agent)}

	if resolved.BaseURL == "" {
		rows = append(rows, checkRow{checkFail, "gerrit",
			fmt.Sprintf("base URL not configured; set gerrit.base_url in %s or GERRIT_BASE_URL", config.ConfigFileName)})
	} else {
		rows = append(rows, checkRow{checkPass, "gerrit", resolved.BaseURL})
	}

	rows = append(rows, credentialsCheck(resolved))

	if resolved.BaseURL != "" {
		rows = append(rows, reachabilityCheck(ctx, resolved))
		rows = append(rows, tlsCheck(resolved))
	}

	return rows
}

func agentCheck(name string) checkRow {
	ag, err := agent.NewAgent(name)
	if err != nil {
		return checkRow{checkFail, "agent", err.Error()}
	}
	if err := ag.IsAvailable(); err != nil {
		return checkRow{checkFail, "agent", err.Error()}
	}

	path, err := exec.LookPath(ag.Name())
	if err != nil {
		return checkRow{checkPass, "agent", ag.Name() + " CLI found"}
	}
	return checkRow{checkPass, "agent", fmt.Sprintf("%s CLI found at %s", ag.Name(), path)}
}

func credentialsCheck(resolved config.ResolvedConfig) checkRow {
	creds := resolved.Credentials()
	switch {
	case creds.Username != "" && creds.Password != "":
		return checkRow{checkPass, "credentials", "basic auth as " + creds.Username}
	case creds.SessionCookie != "":
		return checkRow{checkPass, "credentials", "session cookie"}
	case creds.Username != "":
		return checkRow{checkWarn, "credentials", "username set but GERRIT_PASSWORD is empty; requests will be anonymous"}
	default:
		return checkRow{checkWarn, "credentials", "none configured; draft comments require authentication"}
	}
}

func reachabilityCheck(ctx context.Context, resolved config.ResolvedConfig) checkRow {
	probeCtx, cancel := context.WithTimeout(ctx, reachabilityTimeout)
	defer cancel()

	client := gerrit.NewClient(resolved.Credentials())
	if _, err := client.Get(probeCtx, "changes/?n=1"); err != nil {
		return checkRow{checkFail, "reachability", err.Error()}
	}
	return checkRow{checkPass, "reachability", "server answered changes/?n=1"}
}

func tlsCheck(resolved config.ResolvedConfig) checkRow {
	switch {
	case resolved.InsecureSkipVerify:
		return checkRow{checkWarn, "tls", "certificate verification disabled"}
	case strings.HasPrefix(resolved.BaseURL, "http://"):
		return checkRow{checkWarn, "tls", "plain HTTP; credentials travel unencrypted"}
	default:
		return checkRow{checkPass, "tls", "certificate verification enabled"}
	}
}

func renderChecks(rows []checkRow) string {
	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %-13s %s\n", row.status.glyph(), row.label, row.detail)
	}
	return b.String()
}

func (s checkStatus) glyph() string {
	switch s {
	case checkPass:
		return terminal.Color(terminal.Green) + "✓" + terminal.Color(terminal.Reset)
	case checkWarn:
		return terminal.Color(terminal.Yellow) + "!" + terminal.Color(terminal.Reset)
	default:
		return terminal.Color(terminal.Red) + "✗" + terminal.Color(terminal.Reset)
	}
}

func hasFailure(rows []checkRow) bool {
	for _, row := range rows {
		if row.status == checkFail {
			return true
		}
	}
	return false
}
