package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pulse/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "pulse",
		Short: "Pulse posts a critical-milestone digest from the tracker to a chat webhook",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newReportCmd(cfg, &jsonOutput),
		newListenCmd(cfg),
		newConfigCmd(cfg),
	)

	return cmd
}
