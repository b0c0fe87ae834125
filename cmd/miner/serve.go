package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/just-nibble/service-miner/internal/adapters/http/handlers"
	"github.com/just-nibble/service-miner/internal/adapters/http/routes"
	"github.com/just-nibble/service-miner/internal/core/service"
	"github.com/just-nibble/service-miner/internal/seeder"
	"github.com/spf13/cobra"
)

var (
	serveAddr       string
	monitorTargets  string
	monitorInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mined data over HTTP",
	Long: `Start the HTTP API. With --targets the listed services are re-mined
every --interval in the background.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&monitorTargets, "targets", "", "targets file to re-mine periodically")
	serveCmd.Flags().DurationVar(&monitorInterval, "interval", time.Hour, "re-mining interval")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ix, err := a.indexer(true)
	if err != nil {
		return err
	}

	if monitorTargets != "" {
		targets, err := service.LoadTargets(monitorTargets)
		if err != nil {
			return err
		}
		seeded, n, err := seeder.SeedServices(ctx, a.manager, ix, targets, logger)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.WithField("services", n).Info("mining new services in the background")
		}
		go ix.Monitor(ctx, monitorInterval, targets, seeded)
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.HTTP.Addr
	}
	router := routes.NewRouter(
		handlers.NewServiceHandler(ctx, a.manager, ix, logger),
		handlers.NewAnalysisHandler(a.analyzer),
	)
	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	logger.WithField("addr", addr).Info("server is running")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
