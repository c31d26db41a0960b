package agent

import "fmt"

// SupportedAgents lists all valid agent names.
var SupportedAgents = []string{"claude"}

// DefaultAgent is the default agent used for reviews when none is specified.
const DefaultAgent = "claude"

// NewAgent creates an Agent by name.
func NewAgent(name string) (Agent, error) {
	switch name {
	case "claude":
		return NewClaudeAgent(), nil
	default:
		return nil, fmt.Errorf("unknown agent %q, supported: claude", name)
	}
}
