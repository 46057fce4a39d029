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

	"github.com/friendsonlinesolution/file-converter-backend1/converters"
	"github.com/friendsonlinesolution/file-converter-backend1/handlers"
	"github.com/friendsonlinesolution/file-converter-backend1/models"
	"github.com/friendsonlinesolution/file-converter-backend1/server"
	"github.com/friendsonlinesolution/file-converter-backend1/storage"
	"github.com/friendsonlinesolution/file-converter-backend1/workers"
)

// staleUploadAge is how old a leftover upload must be before start-up removes it.
const staleUploadAge = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the conversion HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	uploads, err := storage.NewUploadDir(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("preparing upload dir: %w", err)
	}
	log.Info().Str("dir", uploads.Dir()).Msg("upload dir ready")
	if n, err := uploads.Sweep(staleUploadAge); err != nil {
		log.Warn().Err(err).Msg("sweeping stale uploads")
	} else if n > 0 {
		log.Info().Int("removed", n).Msg("removed stale uploads")
	}

	conv := converters.New(converterOptions(cfg))
	if !conv.Enabled(models.PDFToJPEG) {
		log.Info().Msg("pdf-to-jpeg conversion is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Int("workers", cfg.Workers).Int("queue", cfg.QueueSize).Msg("starting worker pool")
	pool := workers.NewWorkerPool(cfg.Workers, cfg.QueueSize, conv, log)
	pool.Start(context.Background())
	defer pool.Stop()

	h := handlers.NewConversionHandler(uploads, pool, conv, cfg.MaxUploadBytes)
	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: server.NewRouter(log, h, server.Options{
			CORSOrigins: cfg.CORSOrigins,
			StaticDir:   cfg.StaticDir,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
		return err
	}
	return nil
}
