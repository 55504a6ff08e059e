package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar selects the log level (debug, info, warn, error). Unset
// means silent, which keeps CLI output clean.
const LogLevelEnvVar = "CAMHOME_LOG_LEVEL"

// Initialize replaces the global logger. An empty level falls back to
// LogLevelEnvVar; if that is empty too, logging is disabled.
//
// Logs go to stderr so they never mix with table or JSON output on stdout.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	encoder := zap.NewDevelopmentEncoderConfig()
	encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoder.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder.EncodeCaller = zapcore.ShortCallerEncoder

	built, err := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(level)),
		Encoding:         "console",
		EncoderConfig:    encoder,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger = built
	return nil
}

// InitializeFromEnv initializes the logger from the CAMHOME_LOG_LEVEL
// environment variable. CLI commands use this so they stay quiet unless asked.
func InitializeFromEnv() error {
	return Initialize("")
}

// ParseLevel maps a level name to a zap level. Unknown names map to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Silent until Initialize is called
		logger = zap.NewNop()
	}
	return logger
}

// Named returns a child of the global logger scoped to a component.
func Named(component string) *zap.Logger {
	return GetLogger().Named(component)
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogHTTPRequest logs a completed HTTP request
func LogHTTPRequest(requestID, remoteAddr, method, path string, status int, size int64, duration time.Duration) {
	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("remote_addr", remoteAddr),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Int64("bytes", size),
		zap.Duration("duration", duration),
	}

	switch {
	case status >= 500:
		Error("HTTP request", fields...)
	case status >= 400:
		Warn("HTTP request", fields...)
	default:
		Info("HTTP request", fields...)
	}
}

// LogScan logs the outcome of a discovery scan
func LogScan(subnet string, devices int, degraded bool, duration time.Duration, probeErr error) {
	fields := []zap.Field{
		zap.String("subnet", subnet),
		zap.Int("devices", devices),
		zap.Bool("degraded", degraded),
		zap.Duration("duration", duration),
	}
	if probeErr != nil {
		fields = append(fields, zap.NamedError("probe_error", probeErr))
	}
	Info("Discovery scan finished", fields...)
}

// MaskSecret hides all but the first character of a credential for log output.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 2 {
		return "**"
	}
	return secret[:1] + strings.Repeat("*", len(secret)-1)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
