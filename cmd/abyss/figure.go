package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwulff/abyss-go/internal/domain"
	"github.com/jwulff/abyss-go/internal/render"
)

func newFigureCmd() *cobra.Command {
	var (
		floorFlag string
		top       int
		htmlOut   string
	)

	cmd := &cobra.Command{
		Use:   "figure",
		Short: "Dump the utilization figure JSON for a floor",
		RunE: func(cmd *cobra.Command, args []string) error {
			floor, err := domain.ParseFloor(floorFlag)
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, a *app) error {
				table, err := a.loader(nil).Load(ctx)
				if err != nil {
					return err
				}
				fig := render.UtilizationBar(table, floor, top)

				if htmlOut != "" {
					f, err := os.Create(htmlOut)
					if err != nil {
						return err
					}
					defer f.Close()
					if err := render.WritePage(f, render.PageOptions{
						Title:   floor.Column(),
						CDN:     a.cfg.Report.PlotlyCDN,
						Figures: []render.Figure{fig},
					}); err != nil {
						return err
					}
					fmt.Printf("Wrote %s\n", htmlOut)
					return nil
				}

				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(fig)
			})
		},
	}

	cmd.Flags().StringVar(&floorFlag, "floor", domain.Floor9.Column(), "floor to chart")
	cmd.Flags().IntVar(&top, "top", 0, "limit to the top N characters (0 for all)")
	cmd.Flags().StringVar(&htmlOut, "html", "", "write a standalone HTML page instead of JSON")
	return cmd
}
