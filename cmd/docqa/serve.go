package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docqa/internal/bootstrap"
	httptransport "docqa/internal/transport/http"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config failed: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("bootstrap failed: %w", err)
			}
			logger := app.Logger

			logger.Info("starting",
				"upload_dir", cfg.Upload.Dir,
				"max_file_size_mb", float64(cfg.Upload.MaxFileSize)/(1<<20),
				"addr", cfg.HTTPAddr(),
			)
			checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			if app.Composer.ValidateCredentials(checkCtx) {
				logger.Info("model credentials are valid", "model", cfg.LLM.Model)
			} else {
				logger.Warn("model credential validation failed", "model", cfg.LLM.Model)
			}
			cancel()

			server := &http.Server{
				Addr:              cfg.HTTPAddr(),
				Handler:           httptransport.NewRouter(app),
				ReadHeaderTimeout: 5 * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() {
				logger.Info("server listening", "addr", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				if err != nil {
					_ = app.Close(context.Background())
					return fmt.Errorf("server failed: %w", err)
				}
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelShutdown()

			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("server shutdown failed", "error", err)
			}
			if err := app.Close(shutdownCtx); err != nil {
				logger.Error("close resources failed", "error", err)
				return err
			}
			logger.Info("cleanup completed")
			return nil
		},
	}
}
