package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"pulse/internal/config"
	"pulse/internal/format"
	"pulse/internal/report"
	"pulse/internal/tracker"
	"pulse/internal/webhook"
)

func newReportCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var stdout bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the milestone digest and post it to the webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ValidateReport(); err != nil {
				return err
			}
			if !stdout && !*jsonOutput && cfg.WebhookURL == "" {
				return fmt.Errorf("webhook_url is required (or pass --stdout)")
			}

			ctx := cmd.Context()
			logger := slog.Default().With("component", "report")
			client := tracker.NewClient(cfg.APIURL, cfg.PageLimit)

			projects := listProjects(ctx, client, cfg, logger)

			pipe := report.NewPipeline(client, report.OptionsFromConfig(cfg), logger)
			summaries := pipe.Run(ctx, projects)
			logger.Info("pipeline complete", "projects", len(projects), "reported", len(summaries))

			if *jsonOutput {
				return writeJSON(summaries)
			}

			digest := format.Digest(summaries, time.Now())
			if stdout {
				return writePlain("%s\n", digest)
			}
			return webhook.NewClient(cfg.WebhookURL).Post(ctx, digest)
		},
	}

	cmd.Flags().BoolVar(&stdout, "stdout", false, "print the digest instead of posting to the webhook")
	return cmd
}

// listProjects resolves the digest's input set. A failed listing
// degrades to an empty run (the digest then carries the
// nothing-to-report sentinel) rather than aborting.
func listProjects(ctx context.Context, client *tracker.Client, cfg *config.Config, logger *slog.Logger) []tracker.Project {
	var (
		projects []tracker.Project
		err      error
	)
	if cfg.PortfolioGID != "" {
		projects, err = client.ListPortfolioItems(ctx, cfg.PortfolioGID)
	} else {
		projects, err = client.ListWorkspaceProjects(ctx, cfg.WorkspaceGID)
	}
	if err != nil {
		logger.Warn("project listing failed", "error", err)
		return nil
	}
	return projects
}
