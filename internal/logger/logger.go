// Package logger builds the zap logger of the generator.
package logger

import (
	"io"
	"strings"
	"time"

	"github.com/united-manufacturing-hub/umh-utils/env"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFormat represents the logging format.
type LogFormat string

const (
	// FormatConsole indicates human-readable console format.
	FormatConsole LogFormat = "CONSOLE"
	// FormatJSON indicates structured JSON format.
	FormatJSON LogFormat = "JSON"
)

// Environment variables read by FromEnv.
const (
	EnvLevel  = "LOGGING_LEVEL"
	EnvFormat = "LOGGING_FORMAT"
)

// DefaultLevel keeps generation quiet unless something is written.
const DefaultLevel = "INFO"

// ParseLevel converts a level name to zapcore.Level. PRODUCTION is an alias
// for INFO; unknown names fall back to INFO.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG", "DEVELOPMENT":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseFormat converts a format name; unknown names fall back to console.
func ParseFormat(format string) LogFormat {
	if LogFormat(strings.ToUpper(format)) == FormatJSON {
		return FormatJSON
	}

	return FormatConsole
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

// New creates a logger writing to w.
func New(level string, format LogFormat, w io.Writer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var encoder zapcore.Encoder

	if format == FormatJSON {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = timeEncoder
		encoderConfig.ConsoleSeparator = " | "
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(ParseLevel(level)))

	return zap.New(core)
}

// FromEnv creates a logger configured by LOGGING_LEVEL and LOGGING_FORMAT.
func FromEnv(w io.Writer) *zap.Logger {
	level, _ := env.GetAsString(EnvLevel, false, DefaultLevel)            //nolint:errcheck
	format, _ := env.GetAsString(EnvFormat, false, string(FormatConsole)) //nolint:errcheck

	return New(level, ParseFormat(format), w)
}
