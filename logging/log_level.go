package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// LogLevel is an alias so callers need not import zapcore.
type LogLevel = zapcore.Level

// Log level constants for convenience.
const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

// ParseLogLevelString parses a level name case-insensitively.
// Valid levels: debug, info, warn, warning, error.
// Unknown or empty input returns defaultLevel.
func ParseLogLevelString(levelStr string, defaultLevel zapcore.Level) zapcore.Level {
	level, err := ParseLogLevelStrict(levelStr)
	if err != nil {
		return defaultLevel
	}
	return level
}

// ParseLogLevelStrict is like ParseLogLevelString but reports unknown names.
func ParseLogLevelStrict(levelStr string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", levelStr)
	}
}
