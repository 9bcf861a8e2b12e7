package main

import (
	"fmt"
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
	"pkt.systems/pslog"

	"github.com/dshills/shellpane/internal/config"
)

// loadConfig reads the configured file and folds the command-line
// overrides into its log section.
func loadConfig(flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFile != "" {
		cfg.Log.File = flags.logFile
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section. A configured
// file receives structured lines through lumberjack rotation; otherwise
// console output goes to fallback. The returned closer releases the
// rotated file.
func newLogger(cfg config.Log, fallback io.Writer) (pslog.Logger, func() error, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	if cfg.File == "" {
		logger := pslog.NewWithOptions(fallback, pslog.Options{
			Mode:     pslog.ModeConsole,
			MinLevel: level,
		})
		return logger, func() error { return nil }, nil
	}

	rotated := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	logger := pslog.NewWithOptions(rotated, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: level,
	})
	return logger, rotated.Close, nil
}

func parseLevel(s string) (pslog.Level, error) {
	switch s {
	case "trace":
		return pslog.TraceLevel, nil
	case "debug":
		return pslog.DebugLevel, nil
	case "", "info":
		return pslog.InfoLevel, nil
	case "warn":
		return pslog.WarnLevel, nil
	case "error":
		return pslog.ErrorLevel, nil
	default:
		return pslog.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// watchConfig re-applies reloadable settings when the config file changes
// on disk. A blank path means there is nothing to watch. The returned
// stop function is safe to call once.
func watchConfig(path string, logger pslog.Logger, apply func(config.Config)) func() {
	if path == "" {
		return func() {}
	}
	w, err := config.NewWatcher(path, apply, config.WithWatcherLogger(logger))
	if err != nil {
		logger.Warn("config watch unavailable", "path", path, "err", err)
		return func() {}
	}
	return func() { _ = w.Close() }
}
