package logging

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// Field names used in both console and JSON output.
const (
	FieldTimestamp  = "timestamp"
	FieldLevel      = "level"
	FieldLogger     = "logger"
	FieldCaller     = "caller"
	FieldMessage    = "message"
	FieldStacktrace = "stacktrace"
)

// CoreConfig describes the two outputs of a tee core.
type CoreConfig struct {
	ConsoleLevel  zapcore.Level
	FileLevel     zapcore.Level
	ConsoleWriter zapcore.WriteSyncer

	// FileWriter may be nil, in which case only the console core is built.
	FileWriter zapcore.WriteSyncer

	// Development selects the colored console encoder.
	Development bool
}

// NewMultiCore builds a core that writes to the console and, when a file
// writer is configured, to a JSON file. Each side filters by its own level.
//
// Example:
//
//	var buf bytes.Buffer
//	core := NewMultiCore(CoreConfig{
//	    ConsoleLevel:  zapcore.WarnLevel,
//	    FileLevel:     zapcore.InfoLevel,
//	    ConsoleWriter: zapcore.AddSync(os.Stderr),
//	    FileWriter:    zapcore.AddSync(&buf),
//	})
func NewMultiCore(cfg CoreConfig) zapcore.Core {
	var consoleEncoder zapcore.Encoder
	if cfg.Development {
		consoleEncoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewConsoleEncoder(NewPlainConsoleEncoderConfig())
	}

	consoleCore := zapcore.NewCore(consoleEncoder, cfg.ConsoleWriter, cfg.ConsoleLevel)
	if cfg.FileWriter == nil {
		return consoleCore
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(NewEncoderConfig()),
		cfg.FileWriter,
		cfg.FileLevel,
	)
	return zapcore.NewTee(consoleCore, fileCore)
}

// NewEncoderConfig returns the JSON encoder config used for the log file:
// ISO8601 timestamps, lowercase levels, short caller.
func NewEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        FieldTimestamp,
		LevelKey:       FieldLevel,
		NameKey:        FieldLogger,
		CallerKey:      FieldCaller,
		MessageKey:     FieldMessage,
		StacktraceKey:  FieldStacktrace,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// NewConsoleEncoderConfig returns the colored console config for development.
func NewConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := NewEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = shortTimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

// NewPlainConsoleEncoderConfig drops time and caller: in production the
// console only carries warnings a user needs to read.
func NewPlainConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := NewConsoleEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.TimeKey = zapcore.OmitKey
	cfg.CallerKey = zapcore.OmitKey
	return cfg
}

// shortTimeEncoder formats as 15:04:05.000.
func shortTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05.000"))
}
