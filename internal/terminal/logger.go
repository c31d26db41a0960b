package terminal

import (
	"fmt"
	"os"
	"strings"
)

// Style represents a log message style.
type Style string

const (
	StyleInfo    Style = "info"
	StyleSuccess Style = "success"
	StyleWarning Style = "warning"
	StyleError   Style = "error"
	StyleDim     Style = "dim"
	StylePhase   Style = "phase"
)

// styleGlyph returns the marker glyph and color for a style.
func styleGlyph(style Style) (string, string) {
	switch style {
	case StyleSuccess:
		return "✓", Green
	case StyleWarning:
		return "W", Yellow
	case StyleError:
		return "!", Red
	case StyleDim:
		return "·", Dim
	case StylePhase:
		return "▸", Magenta + Bold
	default:
		return "I", Cyan
	}
}

// statusTag renders the "[gra]" prefix with the style color applied to the
// name. Shared by the logger and the spinner so interleaved output lines up.
func statusTag(styleColor string) string {
	return fmt.Sprintf("%s[%s%sgra%s%s]%s",
		Color(Dim), Color(Reset), Color(styleColor), Color(Reset), Color(Dim), Color(Reset))
}

// Logger provides styled logging to stderr.
type Logger struct {
	isTTY bool
}

// NewLogger creates a new logger.
func NewLogger() *Logger {
	return &Logger{
		isTTY: IsStderrTTY(),
	}
}

// Log prints a styled log message to stderr.
func (l *Logger) Log(msg string, style Style) {
	glyph, styleColor := styleGlyph(style)

	// Clear any spinner remnants on a TTY before writing a full line
	if l.isTTY {
		fmt.Fprint(os.Stderr, "\r"+strings.Repeat(" ", 100)+"\r")
	}

	fmt.Fprintf(os.Stderr, "%s %s%s%s %s\n",
		statusTag(styleColor), Color(styleColor), glyph, Color(Reset), msg)
}

// Logf prints a formatted styled log message to stderr.
func (l *Logger) Logf(style Style, format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...), style)
}

// Log prints a styled log message to stderr (package-level function).
func Log(msg string, style Style) {
	logger := NewLogger()
	logger.Log(msg, style)
}

// Logf prints a formatted styled log message to stderr (package-level function).
func Logf(style Style, format string, args ...any) {
	Log(fmt.Sprintf(format, args...), style)
}
