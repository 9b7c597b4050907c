// Package main is the entry point for the abyss statistics tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is the release version printed by the root command.
const Version = "0.1.0-dev"

var (
	// Global flags
	configPath string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "abyss",
		Short:   "Spiral Abyss statistics dashboard and reports",
		Version: Version,
		Long: `abyss fetches Spiral Abyss character utilization and upload statistics
and presents them as an interactive dashboard or static HTML charts.

Configuration comes from .env.local/.env, an optional YAML file (--config),
and the environment, in increasing order of priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(),
		newReportCmd(),
		newFetchCmd(),
		newHistoryCmd(),
		newPreviewCmd(),
		newFigureCmd(),
	)
	return root
}
