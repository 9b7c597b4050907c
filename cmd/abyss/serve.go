package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jwulff/abyss-go/internal/dashboard"
)

func newServeCmd() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the interactive utilization dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if listenAddr == "" {
				listenAddr = a.cfg.Dashboard.ListenAddr
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			srv := dashboard.NewServer(a.loader(store), dashboard.Options{
				CDN:    a.cfg.Report.PlotlyCDN,
				Logger: a.logger.Named("dashboard"),
			})

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			loadCtx, cancel := context.WithTimeout(ctx, fetchTimeout(a.cfg))
			err = srv.Refresh(loadCtx)
			cancel()
			if err != nil {
				return fmt.Errorf("initial load: %w", err)
			}

			fmt.Printf("Dashboard running at http://%s\n", displayAddr(listenAddr))
			fmt.Println("Press Ctrl+C to stop")

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.ListenAndServe(gctx, listenAddr)
			})
			g.Go(func() error {
				srv.Run(gctx, a.cfg.Dashboard.RefreshInterval)
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}

			a.logger.Info("dashboard stopped", zap.String("addr", listenAddr))
			return nil
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default from LISTEN_ADDR)")
	return cmd
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
