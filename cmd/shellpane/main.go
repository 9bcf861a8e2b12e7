// Package main is the entry point for the shellpane console.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx := pslog.ContextWithLogger(context.Background(), logger)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("shellpane command failed")
		return 1
	}
	return 0
}

// rootFlags are shared by every subcommand. Values given on the command
// line override the matching config file settings.
type rootFlags struct {
	configPath string
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "shellpane",
		Short:         "Interactive console with Lua and pty command hosts",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to config file (.toml, .yaml, .yml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "log file path, rotated as it grows")

	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "shellpane %s (%s)\n", version, commit)
			return err
		},
	}
}
