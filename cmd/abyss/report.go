package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwulff/abyss-go/internal/records"
	"github.com/jwulff/abyss-go/internal/report"
)

func newReportCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the static schedule and uploader HTML reports",
		Long: `report reads the upload database and writes
user_per_schedule_bar.html and uploader_info.html to the output directory.
MYSQL_HOST, MYSQL_USER and MYSQL_DATABASE must be set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if outputDir == "" {
					outputDir = a.cfg.Report.OutputDir
				}

				repo, err := records.Open(a.cfg.MySQL, a.logger.Named("records"))
				if err != nil {
					return err
				}
				a.closers = append(a.closers, repo.Close)

				reporter := report.NewReporter(repo, outputDir, a.cfg.Report.PlotlyCDN, a.logger.Named("report"))
				paths, err := reporter.RunAll(ctx)
				for _, p := range paths {
					fmt.Printf("Wrote %s\n", p)
				}
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default from OUTPUT_DIR)")
	return cmd
}
