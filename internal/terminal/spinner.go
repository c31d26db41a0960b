package terminal

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 200 * time.Millisecond

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// StatusSpinner displays an animated spinner whose label follows the agent's
// progress. SetStatus may be called from any goroutine while Run renders.
type StatusSpinner struct {
	isTTY bool

	mu    sync.Mutex
	label string
}

// NewStatusSpinner creates a spinner with an initial label.
func NewStatusSpinner(label string) *StatusSpinner {
	return &StatusSpinner{
		isTTY: IsStderrTTY(),
		label: label,
	}
}

// SetStatus replaces the spinner label.
func (s *StatusSpinner) SetStatus(label string) {
	s.mu.Lock()
	s.label = label
	s.mu.Unlock()
}

// Status returns the current label.
func (s *StatusSpinner) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

// Run renders the spinner until the context is cancelled. On a non-TTY it
// renders nothing and just blocks, so callers can always start it.
func (s *StatusSpinner) Run(ctx context.Context) {
	if !s.isTTY {
		<-ctx.Done()
		return
	}

	idx := 0
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Clear the status line; the caller logs the final outcome,
			// which may be a failure.
			fmt.Fprint(os.Stderr, "\r"+strings.Repeat(" ", 100)+"\r")
			return

		case <-ticker.C:
			frame := string(spinnerFrames[idx%len(spinnerFrames)])
			line := fmt.Sprintf("\r%s %s%s%s %s",
				statusTag(Cyan), Color(Cyan), frame, Color(Reset), s.Status())
			fmt.Fprint(os.Stderr, line+"          ")
			idx++
		}
	}
}
