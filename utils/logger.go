package utils

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// LogLevels lists the accepted log_level values.
var LogLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

// ParseLogLevel maps a log_level value to a pterm level; unknown values are reported with ok=false.
func ParseLogLevel(level string) (pterm.LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return pterm.LogLevelTrace, true
	case "debug":
		return pterm.LogLevelDebug, true
	case "info", "":
		return pterm.LogLevelInfo, true
	case "warn", "warning":
		return pterm.LogLevelWarn, true
	case "error":
		return pterm.LogLevelError, true
	case "disabled", "off", "none":
		return pterm.LogLevelDisabled, true
	default:
		return pterm.LogLevelInfo, false
	}
}

// NewLogger returns a structured logger writing to w, or stderr when w is nil.
func NewLogger(level string, w io.Writer) *pterm.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, _ := ParseLogLevel(level)
	return pterm.DefaultLogger.WithLevel(lvl).WithWriter(w)
}
