package main

import (
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/shellpane/internal/tui"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the console in the current terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("stdout is not a terminal; use serve for remote sessions")
			}
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			// The screen owns the terminal, so without a log file the
			// stream is dropped rather than painted over the UI.
			logger, closeLogs, err := newLogger(cfg.Log, io.Discard)
			if err != nil {
				return err
			}
			defer func() { _ = closeLogs() }()

			app, err := tui.New(cfg, tui.WithLogger(logger))
			if err != nil {
				return err
			}

			stopWatch := watchConfig(flags.configPath, logger, app.ApplyConfig)
			defer stopWatch()

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(signals)
			go func() {
				<-signals
				app.Stop()
			}()

			return app.Run()
		},
	}
}
