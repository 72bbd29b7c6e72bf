// ABOUTME: Structured logging configuration using zap
// ABOUTME: Builds stderr loggers for the CLI and file loggers for the TUI

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugLogName is the file the console writes to inside the config dir.
const DebugLogName = "debug.log"

// New builds a logger writing to w.
// level: debug, info, warn, error (default: info)
// format: console, json (default: console)
func New(level, format string, w io.Writer) *zap.Logger {
	core := zapcore.NewCore(newEncoder(format), zapcore.AddSync(w), parseLevel(level))
	return zap.New(core)
}

// NewStderr is the logger used by one-shot CLI commands.
func NewStderr(level, format string) *zap.Logger {
	return New(level, format, zapcore.Lock(os.Stderr))
}

// NewFile opens <configDir>/debug.log for appending and returns a logger
// writing to it, so the terminal UI is never corrupted by log lines.
// If configDir is empty, logging is disabled.
func NewFile(configDir, level, format string) (*zap.Logger, func(), error) {
	if configDir == "" {
		return zap.NewNop(), func() {}, nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	logPath := filepath.Join(configDir, DebugLogName)
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open debug log: %w", err)
	}

	log := New(level, format, f)
	closeFn := func() {
		_ = log.Sync()
		_ = f.Close()
	}
	return log, closeFn, nil
}

func newEncoder(format string) zapcore.Encoder {
	if strings.ToLower(format) == "json" {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	return zapcore.NewConsoleEncoder(encCfg)
}

// parseLevel converts a string log level to a zap level.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
