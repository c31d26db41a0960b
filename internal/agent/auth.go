package agent

import (
	"slices"
	"strings"
	"unicode"
)

// authStderrPatterns contains substrings that indicate authentication failure
// when found in stderr output (checked case-insensitively).
var authStderrPatterns = []string{
	"api_key",
	"invalid api key",
	"unauthorized",
	"authentication required",
	"invalid credentials",
	"please run /login",
}

// authHints maps agent names to actionable error messages shown on auth failure.
var authHints = map[string]string{
	"claude": "Run 'claude login' or check your API key configuration.",
}

// IsAuthFailure returns true if the given exit code and stderr indicate
// an authentication failure. Exit code 0 is never considered an auth
// failure. A bare "401" only counts as a standalone token so that port
// numbers and URLs do not trip it.
func IsAuthFailure(exitCode int, stderr string) bool {
	if exitCode == 0 {
		return false
	}

	lower := strings.ToLower(stderr)
	for _, pattern := range authStderrPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	return hasToken(lower, "401")
}

// AuthHint returns an actionable error message for the named agent.
// Returns a generic hint for unknown agents.
func AuthHint(agentName string) string {
	if hint, ok := authHints[agentName]; ok {
		return hint
	}
	return "Check your authentication configuration for " + agentName + "."
}

func hasToken(s, tok string) bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return slices.Contains(fields, tok)
}
