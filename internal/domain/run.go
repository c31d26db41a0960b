package domain

import "time"

// RunStatus describes how an agent run ended.
type RunStatus string

const (
	// RunCompleted means the agent ran to completion and exited cleanly.
	RunCompleted RunStatus = "completed"
	// RunStopped means the run was ended early by timeout or cancellation.
	// Draft comments already posted by the agent remain valid.
	RunStopped RunStatus = "stopped"
	// RunFailed means the agent exited with an error.
	RunFailed RunStatus = "failed"
)

// RunResult captures the outcome of one agent run.
type RunResult struct {
	// Status is the terminal state of the run.
	Status RunStatus

	// Duration is the wall-clock time of the run.
	Duration time.Duration

	// AgentDuration is the duration the agent reported for itself in its
	// final result event, if any.
	AgentDuration time.Duration

	// NumTurns is the number of agent turns reported in the result event.
	NumTurns int

	// ResultText is the agent's final result message, if it emitted one.
	ResultText string

	// ResultIsError reports whether the agent flagged its own result as an
	// error. The process exit code, not this flag, decides run failure.
	ResultIsError bool
}

// Stopped reports whether the run ended early without failing.
func (r *RunResult) Stopped() bool {
	return r.Status == RunStopped
}
