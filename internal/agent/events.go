package agent

import (
	"encoding/json"
	"strings"
)

// Stream event types. Lines that do not parse, or parse without a
// recognized type, become EventOther so nothing is dropped silently.
const (
	EventSystem     = "system"
	EventAssistant  = "assistant"
	EventToolCall   = "tool_call"
	EventToolResult = "tool_result"
	EventResult     = "result"
	EventOther      = "other"
)

// StreamEvent is one decoded line of the agent's structured output stream.
// Type selects which payload fields are meaningful; Raw always preserves the
// verbatim line for passthrough logging.
type StreamEvent struct {
	Type    string
	Subtype string

	// Model is set on system events.
	Model string

	// Text carries assistant text segments or the final result text.
	Text string

	// ToolNames lists the tools invoked by a tool-call event.
	ToolNames []string

	// DurationMs and NumTurns summarize a result event.
	DurationMs int64
	NumTurns   int

	// IsError marks a result event the agent itself flagged as failed.
	IsError bool

	// Raw is the verbatim line.
	Raw string
}

// rawEvent matches the wire shape of the claude CLI's stream-json output.
// Tool results arrive as synthetic "user" turns carrying tool_result blocks.
type rawEvent struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	Model   string `json:"model"`
	Message *struct {
		Content []rawSegment `json:"content"`
	} `json:"message"`
	Result     string `json:"result"`
	IsError    bool   `json:"is_error"`
	DurationMs int64  `json:"duration_ms"`
	NumTurns   int    `json:"num_turns"`
}

type rawSegment struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Name string `json:"name"`
}

// ParseStreamEvent decodes one line of agent output. It never fails: lines
// that are not valid JSON, or are JSON without a recognized type, come back
// as EventOther with only Raw set.
func ParseStreamEvent(line string) StreamEvent {
	ev := StreamEvent{Type: EventOther, Raw: line}

	var raw rawEvent
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return ev
	}

	switch raw.Type {
	case "system":
		ev.Type = EventSystem
		ev.Subtype = raw.Subtype
		ev.Model = raw.Model

	case "assistant":
		ev.Type = EventAssistant
		var texts []string
		if raw.Message != nil {
			for _, seg := range raw.Message.Content {
				switch seg.Type {
				case "text":
					texts = append(texts, seg.Text)
				case "tool_use":
					ev.ToolNames = append(ev.ToolNames, seg.Name)
				}
			}
		}
		ev.Text = strings.Join(texts, "\n")
		if len(ev.ToolNames) > 0 {
			ev.Type = EventToolCall
		}

	case "user", "tool_result":
		ev.Type = EventToolResult

	case "result":
		ev.Type = EventResult
		ev.Subtype = raw.Subtype
		ev.Text = raw.Result
		ev.IsError = raw.IsError
		ev.DurationMs = raw.DurationMs
		ev.NumTurns = raw.NumTurns
	}

	return ev
}
