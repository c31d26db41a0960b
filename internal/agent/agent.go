package agent

import (
	"context"
)

// RunSpec describes one review run handed to an agent backend.
type RunSpec struct {
	// Prompt is the full review instruction. It is delivered on the process
	// input stream to avoid argument length and escaping limits.
	Prompt string

	// Model optionally selects the backend model.
	Model string

	// WorkDir is the working directory for the agent process (defaults to
	// the current directory).
	WorkDir string

	// ToolConfigPath points at the tool-server wiring file the agent should
	// load. The file is removed when the run settles.
	ToolConfigPath string

	// OnStderrLine receives the agent's stderr output line by line. Set by
	// the supervisor; invoked from the process's stderr drain.
	OnStderrLine func(string)
}

// Agent represents an external CLI backend that can run a review.
type Agent interface {
	// Name returns the agent's identifier (e.g., "claude").
	Name() string

	// IsAvailable checks if the agent's backend CLI is installed and
	// accessible. Returns an error if the agent cannot be used.
	IsAvailable() error

	// StartReview launches the agent process for the given run.
	// Returns an ExecutionResult streaming the agent's structured output.
	// The caller MUST call Close() on the result to ensure proper resource
	// cleanup. After Close(), ExitCode() and Stderr() return valid values.
	StartReview(ctx context.Context, spec *RunSpec) (*ExecutionResult, error)
}
