package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwulff/abyss-go/internal/domain"
	"github.com/jwulff/abyss-go/internal/render"
)

func newPreviewCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the current utilization table for every floor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				table, err := a.loader(nil).Load(ctx)
				if err != nil {
					return err
				}

				for _, floor := range domain.Floors {
					fmt.Printf("%s, schedule %d:\n", floor.Column(), table.Schedule)
					fmt.Println(render.TerminalTable(table, floor, limit))
					fmt.Println()
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "rows per floor (0 for all)")
	return cmd
}
