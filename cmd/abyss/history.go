package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwulff/abyss-go/internal/domain"
	"github.com/jwulff/abyss-go/internal/render"
	"github.com/jwulff/abyss-go/internal/storage"
)

func newHistoryCmd() *cobra.Command {
	var (
		schedule  int
		floorFlag string
		limit     int
		prune     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived utilization snapshots",
		Long: `history lists the snapshots in the archive. With --schedule it prints
that schedule's table; with --prune it deletes snapshots older than the given age.
The listing ends with the outcome of the latest fetch from each source.`,
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
				if store == nil {
					return errors.New("archive disabled: SQLITE_PATH is empty")
				}

				if prune > 0 {
					n, err := storage.PruneSnapshots(ctx, store, time.Now().Add(-prune))
					if err != nil {
						return err
					}
					fmt.Printf("Deleted %d snapshot(s)\n", n)
				}

				if schedule > 0 {
					return printSnapshot(ctx, store, schedule, floor, limit)
				}
				if err := listSnapshots(ctx, store); err != nil {
					return err
				}
				return printStatus(ctx, store)
			})
		},
	}

	cmd.Flags().IntVar(&schedule, "schedule", 0, "print the snapshot of this schedule")
	cmd.Flags().StringVar(&floorFlag, "floor", domain.Floor12.Column(), "floor to sort by")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "rows to print (0 for all)")
	cmd.Flags().DurationVar(&prune, "prune", 0, "delete snapshots older than this age")
	return cmd
}

func listSnapshots(ctx context.Context, store storage.Store) error {
	infos, err := store.ListSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No snapshots archived.")
		return nil
	}

	fmt.Printf("Found %d snapshot(s):\n\n", len(infos))
	for _, info := range infos {
		fmt.Printf("  Schedule %-4d %3d rows  %s  %s\n",
			info.Schedule, info.RowCount, info.FetchedAt.Local().Format("2006-01-02 15:04"), info.ID)
	}
	return nil
}

func printSnapshot(ctx context.Context, store storage.Store, schedule int, floor domain.Floor, limit int) error {
	snapshot, err := store.GetSnapshot(ctx, schedule)
	if storage.IsNotFound(err) {
		return fmt.Errorf("no snapshot for schedule %d", schedule)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Schedule %d, fetched %s\n", snapshot.Schedule, snapshot.FetchedAt.Local().Format(time.RFC1123))
	fmt.Println(render.TerminalTable(snapshot.Table(), floor, limit))
	return nil
}

func printStatus(ctx context.Context, store storage.Store) error {
	status, err := storage.ReadStatus(ctx, store)
	if err != nil {
		return err
	}

	fmt.Println()
	if status.LastSchedule > 0 {
		fmt.Printf("Last archived schedule: %d\n", status.LastSchedule)
	}
	fmt.Println("Sources:")
	for _, src := range status.Sources {
		fmt.Println("  " + formatFetchState(src))
	}
	return nil
}

func formatFetchState(s *domain.FetchState) string {
	switch {
	case s.LastRun.IsZero() && s.ErrorCount == 0:
		return fmt.Sprintf("%-12s never fetched", s.Source)
	case s.Healthy():
		return fmt.Sprintf("%-12s ok      last run %s", s.Source, s.LastRun.Local().Format("2006-01-02 15:04"))
	default:
		last := "never"
		if !s.LastRun.IsZero() {
			last = s.LastRun.Local().Format("2006-01-02 15:04")
		}
		return fmt.Sprintf("%-12s failing last run %s, %d error(s): %s", s.Source, last, s.ErrorCount, s.LastError)
	}
}
