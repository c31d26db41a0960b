package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/richhaase/gerrit-review-agent/internal/domain"
)

// DefaultRunTimeout caps how long one review run may take. Hitting the
// ceiling stops the run without failing it: draft comments the agent already
// posted through its tools remain valid.
const DefaultRunTimeout = 5 * time.Minute

// Observer receives live output from a supervised run. Progress and Log are
// called from the supervisor's read loop, in stream order. StderrLine may be
// called concurrently from the process's stderr drain.
type Observer interface {
	// Progress reports a human-readable status. Consecutive duplicates are
	// already suppressed.
	Progress(status string)

	// Log carries raw agent output for observability.
	Log(line string)

	// StderrLine carries one line of the agent's stderr.
	StderrLine(line string)
}

// nopObserver discards all run output.
type nopObserver struct{}

func (nopObserver) Progress(string)   {}
func (nopObserver) Log(string)        {}
func (nopObserver) StderrLine(string) {}

// Supervisor runs one external review agent to completion. It feeds the
// prompt, decodes the structured output stream, reports progress, enforces
// the run timeout, and settles with a single result exactly once. Process
// exit, spawn failure, timeout, and caller cancellation all converge on the
// same settlement point.
type Supervisor struct {
	// Agent is the backend to run.
	Agent Agent

	// Observer receives progress and log output. May be nil.
	Observer Observer

	// Timeout overrides DefaultRunTimeout when positive.
	Timeout time.Duration
}

// Run executes the agent for the given spec and blocks until the run
// settles.
//
// Timeout and caller cancellation stop the run gracefully: the process is
// killed, the result reports RunStopped, and no error is returned. A
// process that cannot be started fails with a diagnostic naming the missing
// binary; a process that exits non-zero on its own fails with its exit code
// and stderr tail. A process killed by a signal the supervisor did not send
// reports no exit code and settles as stopped. The tool-server wiring file,
// if any, is removed on every path.
func (s *Supervisor) Run(ctx context.Context, spec *RunSpec) (*domain.RunResult, error) {
	obs := s.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	// Cancellation observed before spawning: settle without doing any work.
	if ctx.Err() != nil {
		CleanupTempFile(spec.ToolConfigPath)
		return &domain.RunResult{Status: domain.RunStopped}, nil
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	runSpec := *spec
	runSpec.OnStderrLine = obs.StderrLine

	start := time.Now()
	result, err := s.Agent.StartReview(runCtx, &runSpec)
	if err != nil {
		// Availability checks fail before the executor takes ownership of
		// the wiring file; removing an already-removed file is a no-op.
		CleanupTempFile(spec.ToolConfigPath)
		return nil, err
	}

	tracker := newStatusTracker(obs.Progress)
	var buf LineBuffer
	var finalEv *StreamEvent

	handleLine := func(line string) {
		ev := ParseStreamEvent(line)
		if ev.Type == EventResult {
			evCopy := ev
			finalEv = &evCopy
		}
		c := Classify(ev)
		tracker.Report(c.Status)
		for _, l := range c.Logs {
			obs.Log(l)
		}
	}

	chunk := make([]byte, 32*1024)
	for {
		n, readErr := result.Read(chunk)
		if n > 0 {
			for _, line := range buf.Feed(chunk[:n]) {
				handleLine(line)
			}
		}
		if readErr != nil {
			break
		}
	}

	// The stream has ended; parse any unterminated final line before
	// declaring completion.
	if rest, ok := buf.Flush(); ok {
		handleLine(rest)
	}

	_ = result.Close()
	elapsed := time.Since(start)

	res := &domain.RunResult{
		Status:   domain.RunCompleted,
		Duration: elapsed,
	}
	if finalEv != nil {
		res.AgentDuration = time.Duration(finalEv.DurationMs) * time.Millisecond
		res.NumTurns = finalEv.NumTurns
		res.ResultText = finalEv.Text
		res.ResultIsError = finalEv.IsError
	}

	exit := result.ExitCode()
	switch {
	case exit == 0:
		return res, nil

	case exit > 0 && runCtx.Err() == nil:
		stderr := strings.TrimSpace(result.Stderr())
		msg := fmt.Sprintf("agent %s exited with code %d", s.Agent.Name(), exit)
		if stderr != "" {
			msg += ": " + stderr
		}
		if IsAuthFailure(exit, stderr) {
			msg += " (" + AuthHint(s.Agent.Name()) + ")"
		}
		return nil, errors.New(msg)

	default:
		// Stopped by the timeout, by caller cancellation, or by an external
		// signal. An exit forced this way never fails the run.
		res.Status = domain.RunStopped
		return res, nil
	}
}
