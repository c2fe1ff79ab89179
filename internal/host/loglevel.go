package host

import (
	"fmt"
	"log/slog"
	"strings"
)

// LogLevel is the severity accepted by the host's echo task. The zero value
// means "no level given", which hosts print without a severity prefix.
type LogLevel string

const (
	LevelDebug   LogLevel = "debug"
	LevelInfo    LogLevel = "info"
	LevelWarning LogLevel = "warning"
	LevelError   LogLevel = "error"
)

// ParseLogLevel accepts the level names case-insensitively, plus "warn".
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	}
	return "", fmt.Errorf("unknown log level %q: must be one of debug, info, warning, error", s)
}

// UnmarshalText lets the type bridge construct a LogLevel from a string attribute.
func (l *LogLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseLogLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Slog maps the level onto slog. An unset level logs at Info.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
