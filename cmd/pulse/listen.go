package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"pulse/internal/config"
	"pulse/internal/listener"
	"pulse/internal/tracker"
)

func newListenCmd(cfg *config.Config) *cobra.Command {
	var (
		addr       string
		rosterPath string
	)

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Run the inbound chat-events listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.ListenAddr = addr
			}
			if rosterPath != "" {
				cfg.RosterPath = rosterPath
			}
			if err := cfg.ValidateListen(); err != nil {
				return err
			}

			roster, err := listener.LoadRoster(cfg.RosterPath)
			if err != nil {
				return err
			}

			logger := slog.Default().With("component", "listener")
			client := tracker.NewClient(cfg.APIURL, cfg.PageLimit)
			srv := listener.New(cfg.ListenAddr, client, roster, logger)
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&rosterPath, "roster", "", "path to the roster YAML file")
	return cmd
}
