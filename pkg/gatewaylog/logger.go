// Package gatewaylog wraps go.uber.org/zap for structured request logging
// (C11). Adapted from the teacher pack's internal/infra/logger package: a
// package-level *zap.Logger built once at startup, re-exported as small
// level-named functions so call sites don't import zap directly.
package gatewaylog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// Init builds the package-level logger. debugEnabled lowers the level to
// debug; production builds should leave it false.
func Init(debugEnabled bool) error {
	level := zapcore.InfoLevel
	if debugEnabled {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	built, err := config.Build()
	if err != nil {
		return err
	}
	logger = built
	return nil
}

// Sync flushes buffered log entries; call before process exit.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}

// L returns the package logger, falling back to a no-op logger if Init was
// never called (e.g. in tests).
func L() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Debug logs at debug level.
func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }

// Info logs at info level.
func Info(msg string, fields ...zap.Field) { L().Info(msg, fields...) }

// Warn logs at warn level -- used for translation parse failures (spec §7c),
// which are recovered, not fatal.
func Warn(msg string, fields ...zap.Field) { L().Warn(msg, fields...) }

// Error logs at error level.
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }
