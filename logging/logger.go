// Package logging provides structured logging for pdftokens.
//
// Log entries are tee'd to stderr (human-readable) and to a rotating JSON
// log file. Standard output is reserved for the markdown report.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures a Logger.
type Options struct {
	// Level is the minimum level written to the log file.
	Level zapcore.Level

	// Development lowers the console threshold to debug and uses colored
	// level names. Otherwise the console shows warnings and above, or Level
	// when that is higher.
	Development bool

	// FilePath is the log file location. Empty disables the file output.
	FilePath string

	// File controls rotation of the log file.
	File FileWriterConfig
}

// DefaultOptions returns Options for a production run writing to filePath.
func DefaultOptions(filePath string) Options {
	return Options{
		Level:    zapcore.InfoLevel,
		FilePath: filePath,
		File:     DefaultFileWriterConfig(),
	}
}

// Logger wraps zap.Logger with the console + file tee used by the CLI.
//
// Example:
//
//	logger, err := NewLogger(DefaultOptions("pdftokens.log"))
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	logger.Info("processed file", zap.String("path", path), zap.Int("tokens", n))
type Logger struct {
	zap *zap.Logger
}

// NewLogger creates a Logger from opts.
//
// The console core writes to stderr. The file core always writes JSON and
// rotates via lumberjack. An error is returned if the log file's directory
// cannot be created.
func NewLogger(opts Options) (*Logger, error) {
	var fileWriter zapcore.WriteSyncer
	if opts.FilePath != "" {
		w, err := NewFileWriterWithConfig(opts.FilePath, opts.File)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file writer: %w", err)
		}
		fileWriter = w
	}

	core := NewMultiCore(CoreConfig{
		ConsoleLevel:  consoleLevel(opts),
		FileLevel:     opts.Level,
		ConsoleWriter: zapcore.Lock(os.Stderr),
		FileWriter:    fileWriter,
		Development:   opts.Development,
	})

	zapLogger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1), // skip this wrapper
	)

	return &Logger{zap: zapLogger}, nil
}

// consoleLevel is the stderr threshold for opts.
func consoleLevel(opts Options) zapcore.Level {
	if opts.Development {
		return zapcore.DebugLevel
	}
	if opts.Level > zapcore.WarnLevel {
		return opts.Level
	}
	return zapcore.WarnLevel
}

// NewNopLogger returns a Logger that discards everything. Used by tests and
// by callers that do not care about logs.
func NewNopLogger() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// NewLoggerFromCore wraps an existing zapcore.Core, for tests that need to
// observe entries.
func NewLoggerFromCore(core zapcore.Core) *Logger {
	return &Logger{zap: zap.New(core)}
}

// Sync flushes buffered entries. Call before exit.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Debug logs at DebugLevel.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, fields...)
}

// Info logs at InfoLevel.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, fields...)
}

// Warn logs at WarnLevel.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, fields...)
}

// Error logs at ErrorLevel.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, fields...)
}

// With returns a child logger that adds fields to every entry.
//
// Example:
//
//	runLogger := logger.With(zap.String("run_id", runID))
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(fields...)}
}

// Named adds a sub-logger name, e.g. "extractor" or "history".
func (l *Logger) Named(name string) *Logger {
	return &Logger{zap: l.zap.Named(name)}
}
