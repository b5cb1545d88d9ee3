package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reoring/formskema/internal/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "formskema",
		Short:         "Validate and bind form data against field schemas",
		Long:          `formskema compiles flat field definition lists into schemas and validates submitted records against them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Persistent flags (available to all commands)
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")

	root.AddCommand(newValidateCmd(), newServeCmd())
	return root
}

func loggerFor(cmd *cobra.Command) (*slog.Logger, error) {
	lvl, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(lvl)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(cmd.ErrOrStderr(), level), nil
}
