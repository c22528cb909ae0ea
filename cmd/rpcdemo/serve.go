package main

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/go-rpc-demo/internal/config"
	"github.com/deppfellow/go-rpc-demo/internal/dispatch"
	"github.com/deppfellow/go-rpc-demo/internal/handler"
	"github.com/deppfellow/go-rpc-demo/internal/logger"
	"github.com/deppfellow/go-rpc-demo/internal/router"
	"github.com/deppfellow/go-rpc-demo/internal/server"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long:  "Run the HTTP server. Configuration is read from RPCDEMO_* env vars and an optional .env file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Observability, loggerService)

	srv := server.New(cfg, &log, loggerService)

	table := dispatch.NewTable()
	r, err := router.NewRouter(srv, handler.NewHandlers(srv, table), table)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	srv.SetupHTTPServer(r)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	wait := gfshutdown.GracefulShutdown(ctx, shutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			log.Info().Msg("graceful shutdown initiated")
			return srv.Shutdown(ctx)
		},
	})

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
			loggerService.Shutdown(5 * time.Second)
			return err
		}
		return nil

	case code := <-wait:
		if code != 0 {
			return fmt.Errorf("shutdown finished with exit code %d", code)
		}
		return nil
	}
}
