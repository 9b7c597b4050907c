package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwulff/abyss-go/internal/domain"
	"github.com/jwulff/abyss-go/internal/render"
)

func newFetchCmd() *cobra.Command {
	var floorFlag string
	var limit int

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the current utilization table and archive it",
		RunE: func(cmd *cobra.Command, args []string) error {
			floor, err := domain.ParseFloor(floorFlag)
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, a *app) error {
				store, err := a.openStore()
				if err != nil {
					return err
				}

				table, err := a.loader(store).Load(ctx)
				if err != nil {
					return err
				}

				fmt.Printf("Schedule %d: %d characters\n", table.Schedule, table.Len())
				if store != nil {
					fmt.Printf("Archived to %s\n", a.cfg.Archive.Path)
				}
				fmt.Println(render.TerminalTable(table, floor, limit))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&floorFlag, "floor", domain.Floor12.Column(), "floor to sort by")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "rows to print (0 for all)")
	return cmd
}
