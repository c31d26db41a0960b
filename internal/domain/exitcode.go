// Package domain provides core types for the review agent.
package domain

// ExitCode represents the exit status of a review run.
type ExitCode int

const (
	// ExitOK indicates the run completed, or was stopped early by timeout
	// or cancellation with partial progress intact.
	ExitOK ExitCode = 0
	// ExitChecksFailed indicates a setup check (gra doctor) failed.
	ExitChecksFailed ExitCode = 1
	// ExitError indicates the run failed due to an error.
	ExitError ExitCode = 2
	// ExitInterrupted indicates the run was interrupted by a signal.
	ExitInterrupted ExitCode = 130
)

// Int returns the exit code as an int for use with os.Exit.
func (e ExitCode) Int() int {
	return int(e)
}
