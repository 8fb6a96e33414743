package logging

import (
	"context"
	"os"

	zap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a new zap.SugaredLogger at the default level: debug
// when REKALL_DEBUG=true, info otherwise.
func NewLogger() *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if debugMode, ok := os.LookupEnv("REKALL_DEBUG"); ok && debugMode == "true" {
		level = zapcore.DebugLevel
	}
	return NewLoggerAtLevel(level)
}

// NewLoggerAtLevel returns a new zap.SugaredLogger capped at the given
// level, for callers that want per-key fan-out logging without the
// environment switch.
func NewLoggerAtLevel(level zapcore.Level) *zap.SugaredLogger {
	var config zap.Config
	if level <= zapcore.DebugLevel {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	// Config customization goes here if any
	config.OutputPaths = []string{"stdout"}
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return logger.Named("rekall").Sugar()
}

type loggerKey struct{}

// WithLogger returns a copy of parent context in which the
// value associated with logger key is the supplied logger.
func WithLogger(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger in the context.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if logger, ok := ctx.Value(loggerKey{}).(*zap.SugaredLogger); ok {
		return logger
	}
	return NewLogger()
}
