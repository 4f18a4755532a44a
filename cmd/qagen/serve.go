package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hitrax/qagen/internal/api"
	"github.com/hitrax/qagen/internal/config"
	"github.com/hitrax/qagen/internal/generate"
	"github.com/hitrax/qagen/internal/pipeline"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API for a single document session",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()

			model, err := generate.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				return err
			}
			client := generate.NewClient(model, generate.RetryPolicy{
				MaxAttempts: cfg.MaxAttempts,
				BaseDelay:   cfg.RetryBaseDelay,
			}, log)

			sess := pipeline.NewSession(log)
			orch := pipeline.NewOrchestrator(client, cfg.PacingDelay, log)
			srv := api.NewServer(sess, orch, client, log, cfg)

			httpServer := &http.Server{
				Addr:         "127.0.0.1:" + cfg.Port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				log.Info("shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("starting qagen", "addr", httpServer.Addr, "model", cfg.GeminiModel)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
}
