package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/shellpane/internal/sshui"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve consoles over SSH",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			logger, closeLogs, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = closeLogs() }()

			server, err := sshui.New(cfg, sshui.WithLogger(logger))
			if err != nil {
				return err
			}

			stopWatch := watchConfig(flags.configPath, logger, server.ApplyConfig)
			defer stopWatch()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.ListenAndServe(ctx)
		},
	}
}
