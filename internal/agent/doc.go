// Package agent supervises external review-agent processes.
//
// The package is built around three pieces:
//
//  1. Agent - an external CLI backend that is spawned once per review run
//  2. Supervisor - feeds the prompt, decodes the structured output stream,
//     reports progress, and enforces the run timeout
//  3. Classify - maps decoded stream events to user-facing progress text
//
// # Run lifecycle
//
// A run is settled exactly once: process exit, spawn failure, timeout, and
// caller cancellation all converge on a single result. Timeouts and
// cancellation stop a run rather than fail it, because draft comments the
// agent has already posted through its tools remain valid. Temporary
// artifacts (the tool-server wiring file) are removed on every path.
//
// Example usage:
//
//	backend, err := agent.NewAgent("claude")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sup := &agent.Supervisor{Agent: backend, Observer: obs}
//	result, err := sup.Run(ctx, &agent.RunSpec{
//	    Prompt: agent.BuildReviewPrompt("", 42),
//	    Model:  "sonnet",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.Stopped() {
//	    // partial run; drafts posted so far are still in place
//	}
//
// # Stream decoding
//
// The agent emits one JSON event per stdout line. LineBuffer reassembles
// lines from arbitrarily split chunks, ParseStreamEvent decodes each line
// into a StreamEvent, and Classify turns events into progress statuses and
// log lines. Unparseable lines pass through as log output, never dropped.
package agent
