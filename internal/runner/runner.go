// Package runner provides the review execution engine.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/richhaase/gerrit-review-agent/internal/agent"
	"github.com/richhaase/gerrit-review-agent/internal/config"
	"github.com/richhaase/gerrit-review-agent/internal/domain"
	"github.com/richhaase/gerrit-review-agent/internal/gerrit"
	"github.com/richhaase/gerrit-review-agent/internal/report"
	"github.com/richhaase/gerrit-review-agent/internal/terminal"
)

// reportFetchTimeout bounds the post-run drafts fetch. It gets its own
// deadline because the run context may already be cancelled by then.
const reportFetchTimeout = 30 * time.Second

// Options holds the configuration for one review run.
type Options struct {
	ChangeNumber   int
	WorkDir        string
	Verbose        bool
	PromptTemplate string
	Resolved       config.ResolvedConfig
}

// Runner executes one review run against a Gerrit change.
type Runner struct {
	opts   Options
	agent  agent.Agent
	logger *terminal.Logger
}

// New creates a runner for the given agent.
func New(opts Options, ag agent.Agent, logger *terminal.Logger) (*Runner, error) {
	if ag == nil {
		return nil, errors.New("an agent is required")
	}
	if opts.ChangeNumber <= 0 {
		return nil, fmt.Errorf("change number must be positive, got %d", opts.ChangeNumber)
	}
	if opts.Resolved.BaseURL == "" {
		return nil, fmt.Errorf("gerrit base URL is not configured; set gerrit.base_url in %s or GERRIT_BASE_URL", config.ConfigFileName)
	}
	if logger == nil {
		logger = terminal.NewLogger()
	}
	return &Runner{opts: opts, agent: ag, logger: logger}, nil
}

// Run executes the review and returns the exit code for the process: 0 when
// the run completed or was stopped early, 2 when it failed, 130 when the
// user interrupted it.
func (r *Runner) Run(ctx context.Context) domain.ExitCode {
	if err := r.agent.IsAvailable(); err != nil {
		r.logger.Logf(terminal.StyleError, "%v", err)
		return domain.ExitError
	}

	spec, err := r.buildRunSpec()
	if err != nil {
		r.logger.Logf(terminal.StyleError, "%v", err)
		return domain.ExitError
	}

	r.logger.Logf(terminal.StylePhase, "Reviewing change %d with %s", r.opts.ChangeNumber, r.agent.Name())

	spinner := terminal.NewStatusSpinner("Starting " + r.agent.Name())
	spinnerCtx, spinnerCancel := context.WithCancel(context.Background())
	spinnerDone := make(chan struct{})
	go func() {
		spinner.Run(spinnerCtx)
		close(spinnerDone)
	}()

	timeout := r.opts.Resolved.Timeout
	if timeout <= 0 {
		timeout = agent.DefaultRunTimeout
	}

	supervisor := &agent.Supervisor{
		Agent: r.agent,
		Observer: &terminalObserver{
			spinner: spinner,
			logger:  r.logger,
			verbose: r.opts.Verbose,
			tty:     terminal.IsStderrTTY(),
		},
		Timeout: timeout,
	}

	result, runErr := supervisor.Run(ctx, spec)

	spinnerCancel()
	<-spinnerDone

	if runErr != nil {
		r.logger.Logf(terminal.StyleError, "Review failed: %v", runErr)
		return domain.ExitError
	}

	interrupted := ctx.Err() != nil

	switch {
	case result.Status == domain.RunStopped && interrupted:
		r.logger.Logf(terminal.StyleWarning, "Review interrupted after %s; drafts posted so far are kept",
			terminal.FormatDuration(result.Duration))
	case result.Status == domain.RunStopped:
		r.logger.Logf(terminal.StyleWarning, "Review stopped at the %s timeout; drafts posted so far are kept",
			supervisor.Timeout)
	default:
		r.logger.Logf(terminal.StyleSuccess, "Review complete in %s", terminal.FormatDuration(result.Duration))
	}

	r.printReport(result)

	if interrupted {
		return domain.ExitInterrupted
	}
	return domain.ExitOK
}

// buildRunSpec assembles the prompt and the tool-server wiring file for one
// run. The wiring file is cleaned up by the supervisor when the run settles.
func (r *Runner) buildRunSpec() (*agent.RunSpec, error) {
	prompt := agent.BuildReviewPrompt(r.opts.PromptTemplate, r.opts.ChangeNumber)
	prompt += agent.LoadGuidelines(r.opts.WorkDir)

	serverSpec, err := toolServerSpec(r.opts.Resolved)
	if err != nil {
		return nil, err
	}

	configPath, err := agent.WriteToolServerConfig(r.opts.WorkDir, serverSpec)
	if err != nil {
		return nil, err
	}

	return &agent.RunSpec{
		Prompt:         prompt,
		Model:          r.opts.Resolved.Model,
		WorkDir:        r.opts.WorkDir,
		ToolConfigPath: configPath,
	}, nil
}

// toolServerSpec points the agent's tool server at this same binary running
// in serve mode, with the Gerrit credentials passed through the environment.
func toolServerSpec(resolved config.ResolvedConfig) (agent.ToolServerSpec, error) {
	exe, err := os.Executable()
	if err != nil {
		return agent.ToolServerSpec{}, fmt.Errorf("failed to locate own executable: %w", err)
	}

	env := map[string]string{
		"GERRIT_BASE_URL": resolved.BaseURL,
	}
	if resolved.Username != "" {
		env["GERRIT_USERNAME"] = resolved.Username
	}
	if resolved.Password != "" {
		env["GERRIT_PASSWORD"] = resolved.Password
	}
	if resolved.Cookie != "" {
		env["GERRIT_COOKIE"] = resolved.Cookie
	}
	if resolved.AuthPrefix != "" {
		env["GERRIT_AUTH_PREFIX"] = resolved.AuthPrefix
	}
	if resolved.InsecureSkipVerify {
		env["GERRIT_TLS_SKIP_VERIFY"] = "true"
	}

	return agent.ToolServerSpec{
		Command: exe,
		Args:    []string{"serve"},
		Env:     env,
	}, nil
}

// printReport fetches the drafts the run produced and prints the summary to
// stdout. Fetch failures degrade to a notice and never change the exit code;
// the drafts live on the server either way.
func (r *Runner) printReport(result *domain.RunResult) {
	fetchCtx, cancel := context.WithTimeout(context.Background(), reportFetchTimeout)
	defer cancel()

	client := gerrit.NewClient(r.opts.Resolved.Credentials())

	drafts, err := report.FetchDrafts(fetchCtx, client, r.opts.ChangeNumber)
	if err != nil {
		fmt.Println(report.RenderFetchFailure(err))
		return
	}

	fmt.Println(report.Render(r.opts.ChangeNumber, drafts, result))
}

// terminalObserver relays supervisor callbacks to the status line and the
// logger.
type terminalObserver struct {
	spinner *terminal.StatusSpinner
	logger  *terminal.Logger
	verbose bool
	tty     bool
}

// Progress updates the spinner label. Without a TTY the spinner renders
// nothing, so status changes are logged instead.
func (o *terminalObserver) Progress(status string) {
	o.spinner.SetStatus(status)
	if !o.tty || o.verbose {
		o.logger.Log(status, terminal.StyleDim)
	}
}

// Log receives agent output that did not parse as a stream event.
func (o *terminalObserver) Log(line string) {
	if o.verbose {
		o.logger.Log(line, terminal.StyleDim)
	}
}

// StderrLine receives the agent's stderr output line by line.
func (o *terminalObserver) StderrLine(line string) {
	if o.verbose {
		o.logger.Logf(terminal.StyleDim, "stderr: %s", line)
	}
}
