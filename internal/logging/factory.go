package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Factory builds run-scoped loggers that write to stderr and a rotating file.
type Factory struct {
	fs       afero.Fs
	dir      string
	maxBytes int64
	console  zapcore.WriteSyncer
	level    zapcore.Level
}

// FactoryOptions configures a Factory.
type FactoryOptions struct {
	Dir      string
	MaxBytes int64
	Console  zapcore.WriteSyncer
	Debug    bool
}

// NewFactory returns a Factory. A nil Console writes to stderr.
func NewFactory(fs afero.Fs, opts FactoryOptions) *Factory {
	console := opts.Console
	if console == nil {
		console = zapcore.Lock(os.Stderr)
	}
	dir := opts.Dir
	if dir == "" {
		dir = "logs"
	}
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}
	return &Factory{fs: fs, dir: dir, maxBytes: opts.MaxBytes, console: console, level: level}
}

// Path returns the log file for a repository named name.
func (f *Factory) Path(name string) string {
	return filepath.Join(f.dir, name+".log")
}

// New opens the log file at path and returns a logger carrying fields, plus a
// function that flushes it.
func (f *Factory) New(path string, fields ...zap.Field) (*zap.Logger, func() error, error) {
	sink, err := NewRotatingFile(f.fs, path, f.maxBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log sink: %w", err)
	}
	fileEncoder := zap.NewProductionEncoderConfig()
	fileEncoder.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleEncoder := zap.NewDevelopmentEncoderConfig()
	consoleEncoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder.CallerKey = ""
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoder), f.console, f.level),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoder), sink, f.level),
	)
	logger := zap.New(core).With(fields...)
	return logger, logger.Sync, nil
}
