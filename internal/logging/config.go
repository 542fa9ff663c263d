package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dmitrijs2005/loginetl/internal/filex"
)

const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// Config selects a logging backend and its sink.
type Config struct {
	Backend    string // "slog" or "zap"
	Level      string // debug, info, warn, error
	OutputPath string // file path; empty means stderr
}

// New builds a Logger for cfg. The returned close function flushes and
// releases the sink and must be called before the process exits.
func New(cfg Config) (Logger, func() error, error) {
	switch cfg.Backend {
	case BackendSlog, "":
		return newSlog(cfg)
	case BackendZap:
		return newZap(cfg)
	default:
		return nil, nil, fmt.Errorf("unsupported log backend %q", cfg.Backend)
	}
}

func newSlog(cfg Config) (Logger, func() error, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(levelOrDefault(cfg.Level))); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var (
		w       io.Writer = os.Stderr
		closeFn           = func() error { return nil }
	)
	if cfg.OutputPath != "" {
		if _, err := filex.EnsureParentDir(cfg.OutputPath); err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		f, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = f.Close
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, ReplaceAttr: replaceLevel})
	return NewSlogLogger(slog.New(h)), closeFn, nil
}

func newZap(cfg Config) (Logger, func() error, error) {
	level, err := zapcore.ParseLevel(levelOrDefault(cfg.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.OutputPaths = []string{"stderr"}
	if cfg.OutputPath != "" {
		if _, err := filex.EnsureParentDir(cfg.OutputPath); err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		zapConfig.OutputPaths = []string{cfg.OutputPath}
	}

	zl, err := zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build zap logger: %w", err)
	}

	l := NewZapLogger(zl)
	return l, l.Sync, nil
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "bad file descriptor") || strings.Contains(msg, "invalid argument")
}
