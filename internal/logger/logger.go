package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the global logger instance for the equipcore project
var Log *zap.SugaredLogger = zap.NewNop().Sugar()

// Init builds the global logger.
// level: "debug", "info", "warn", "error" (default: "info")
// format: "json" or "console" (default: "json")
func Init(level, format string) error {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var config zap.Config
	if format == "console" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	base, err := config.Build()
	if err != nil {
		return err
	}
	Log = base.Sugar()
	return nil
}

// With creates a child logger with contextual fields.
// Example: logger.With("equipment_id", "eq-1", "op", "mark_broken")
func With(args ...any) *zap.SugaredLogger {
	return Log.With(args...)
}

// Named creates a child logger tagged with a component name
func Named(name string) *zap.SugaredLogger {
	return Log.With("component", name)
}
