package agent

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Compile-time interface check
var _ Agent = (*ClaudeAgent)(nil)

// ClaudeAgent implements the Agent interface for the Claude CLI backend.
//
// The CLI runs in non-interactive streaming mode: --print suppresses the
// interactive UI, --output-format stream-json emits one JSON event per line
// (--verbose is required by the CLI for streamed output), and
// --dangerously-skip-permissions grants unattended tool approval so the
// review proceeds without a human confirming each tool call.
type ClaudeAgent struct{}

// NewClaudeAgent creates a new ClaudeAgent instance.
func NewClaudeAgent() *ClaudeAgent {
	return &ClaudeAgent{}
}

// Name returns the agent's identifier.
func (c *ClaudeAgent) Name() string {
	return "claude"
}

// IsAvailable checks if the claude CLI is installed and accessible.
func (c *ClaudeAgent) IsAvailable() error {
	_, err := exec.LookPath("claude")
	if err != nil {
		return fmt.Errorf("claude CLI not found in PATH: %w", err)
	}
	return nil
}

// StartReview launches the claude CLI for the given run. The prompt is
// piped via stdin ("-") and the Gerrit tool server is attached through the
// wiring file in spec.ToolConfigPath.
func (c *ClaudeAgent) StartReview(ctx context.Context, spec *RunSpec) (*ExecutionResult, error) {
	if err := c.IsAvailable(); err != nil {
		return nil, err
	}

	args := []string{
		"--print",
		"--verbose",
		"--output-format", "stream-json",
		"--dangerously-skip-permissions",
	}
	if spec.Model != "" {
		args = append(args, "--model", spec.Model)
	}
	if spec.ToolConfigPath != "" {
		args = append(args, "--mcp-config", spec.ToolConfigPath,
			"--allowedTools", "mcp__"+ToolServerName+"__*")
	}
	args = append(args, "-")

	return executeCommand(ctx, executeOptions{
		Command:      "claude",
		Args:         args,
		Stdin:        strings.NewReader(spec.Prompt),
		WorkDir:      spec.WorkDir,
		TempFilePath: spec.ToolConfigPath,
		OnStderrLine: spec.OnStderrLine,
	})
}
