// Package logging builds the zap logger used by every launcher component.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conn-castle/prelaunch/internal/config"
	"github.com/conn-castle/prelaunch/internal/messages"
)

// Options selects where log entries are written.
type Options struct {
	// Console writes entries to stderr.
	Console bool
	// FilePath, when set, appends entries to that file.
	FilePath string
}

// New builds a logger from cfg. With no outputs selected it returns a no-op
// logger.
func New(cfg config.LoggingConfig, opts Options) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.Encoding = "console"
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.LevelKey = "level"
	zc.EncoderConfig.MessageKey = "msg"
	zc.EncoderConfig.CallerKey = "caller"
	zc.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	outputs := []string{}
	if opts.Console {
		outputs = append(outputs, "stderr")
	}
	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf(messages.LoggingCreateDirFmt, filepath.Dir(opts.FilePath), err)
		}
		outputs = append(outputs, opts.FilePath)
	}
	if len(outputs) == 0 {
		return zap.NewNop(), nil
	}
	zc.OutputPaths = outputs
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf(messages.LoggingBuildFmt, err)
	}
	return logger, nil
}

// ParseLevel converts a config level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf(messages.LoggingInvalidLevelFmt, level)
	}
}
