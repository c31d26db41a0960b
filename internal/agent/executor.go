package agent

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
)

// executeOptions configures command execution for agent CLI invocations.
type executeOptions struct {
	// Command is the CLI executable name (e.g., "claude").
	Command string
	// Args are the command-line arguments.
	Args []string
	// Stdin provides input to the command (typically the prompt).
	Stdin io.Reader
	// WorkDir sets the working directory for the command.
	WorkDir string
	// TempFilePath is a temp file to clean up on Close or start failure
	// (used for the tool-server wiring file).
	TempFilePath string
	// OnStderrLine receives each complete stderr line as it arrives. May be
	// nil. Called from the command's stderr drain, not the caller's
	// goroutine.
	OnStderrLine func(string)
}

// executeCommand runs a CLI command with proper process group setup and
// resource management. This is the shared implementation behind every agent
// backend.
//
// It handles:
//   - Setting process group for proper signal handling (Setpgid)
//   - Draining stderr line by line for observability while retaining a tail
//     for error diagnostics
//   - Creating stdout pipe for streaming output
//   - Starting the command and returning a managed ExecutionResult
//   - Cleaning up temp files on error or when the result is closed
func executeCommand(ctx context.Context, opts executeOptions) (*ExecutionResult, error) {
	// #nosec G204 - Command is always a known agent CLI passed from trusted
	// code in the agent implementations, not user input.
	cmd := exec.CommandContext(ctx, opts.Command, opts.Args...)

	if opts.Stdin != nil {
		cmd.Stdin = opts.Stdin
	}

	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}

	// Set process group for proper signal handling
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stderr := &stderrSink{onLine: opts.OnStderrLine}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		CleanupTempFile(opts.TempFilePath)
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		CleanupTempFile(opts.TempFilePath)
		return nil, fmt.Errorf("failed to start %s: %w", opts.Command, err)
	}

	reader := &cmdReader{
		Reader:       stdout,
		cmd:          cmd,
		ctx:          ctx,
		stderr:       stderr,
		tempFilePath: opts.TempFilePath,
	}

	return reader.ToExecutionResult(), nil
}

// stderrTailLimit bounds how much stderr is retained for diagnostics.
const stderrTailLimit = 8 * 1024

// stderrSink receives subprocess stderr. Complete lines are forwarded to an
// optional callback as they arrive; the most recent bytes are retained so a
// failing run can report what the process said. The mutex covers the
// concurrent Write/Tail access that command teardown produces.
type stderrSink struct {
	mu     sync.Mutex
	buf    LineBuffer
	tail   []byte
	onLine func(string)
}

func (s *stderrSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tail = append(s.tail, p...)
	if len(s.tail) > stderrTailLimit {
		s.tail = s.tail[len(s.tail)-stderrTailLimit:]
	}

	if s.onLine != nil {
		for _, line := range s.buf.Feed(p) {
			s.onLine(line)
		}
	}
	return len(p), nil
}

// finish forwards any unterminated trailing line. Called after the process
// has been waited on, when no more writes can arrive.
func (s *stderrSink) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onLine == nil {
		return
	}
	if rest, ok := s.buf.Flush(); ok {
		s.onLine(rest)
	}
}

// Tail returns the retained stderr output.
func (s *stderrSink) Tail() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.tail)
}
