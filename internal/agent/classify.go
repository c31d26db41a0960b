package agent

import "strings"

// Classification is what a single stream event contributes to run
// reporting: an optional status line for the progress display and zero or
// more raw lines for the output log.
type Classification struct {
	Status string
	Logs   []string
}

// Classify maps one stream event to its user-facing classification. It is a
// pure function; suppressing repeated statuses is the caller's concern (see
// statusTracker).
func Classify(ev StreamEvent) Classification {
	switch ev.Type {
	case EventSystem:
		if ev.Subtype != "init" {
			return Classification{}
		}
		if ev.Model != "" {
			return Classification{Status: "Agent started (model " + ev.Model + ")"}
		}
		return Classification{Status: "Agent started"}

	case EventAssistant:
		return Classification{
			Status: "Analyzing change",
			Logs:   splitLogLines(ev.Text),
		}

	case EventToolCall:
		names := make([]string, len(ev.ToolNames))
		for i, name := range ev.ToolNames {
			names[i] = displayToolName(name)
		}
		return Classification{
			Status: "Calling " + strings.Join(names, ", "),
			Logs:   splitLogLines(ev.Text),
		}

	case EventToolResult:
		return Classification{Status: "Processing tool results"}

	case EventResult:
		status := "Review pass finished"
		if ev.IsError {
			status = "Review pass finished with errors"
		}
		return Classification{
			Status: status,
			Logs:   splitLogLines(ev.Text),
		}

	default:
		// Passthrough arm: unrecognized lines are logged verbatim, never
		// dropped.
		if ev.Raw == "" {
			return Classification{}
		}
		return Classification{Logs: []string{ev.Raw}}
	}
}

// displayToolName trims the tool-server namespace from a tool name, so
// "mcp__gerrit__gerrit_get_change" reads as "gerrit_get_change".
func displayToolName(name string) string {
	if i := strings.LastIndex(name, "__"); i >= 0 {
		return name[i+2:]
	}
	return name
}

func splitLogLines(text string) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// statusTracker suppresses consecutive duplicate status reports. A changed
// status always passes through, even when it repeats an older one.
type statusTracker struct {
	last string
	emit func(string)
}

func newStatusTracker(emit func(string)) *statusTracker {
	return &statusTracker{emit: emit}
}

func (t *statusTracker) Report(status string) {
	if status == "" || status == t.last {
		return
	}
	t.last = status
	t.emit(status)
}
