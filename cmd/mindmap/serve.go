package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MalithGihan/mindmap-service/internal/fusion"
	"github.com/MalithGihan/mindmap-service/internal/server"
	"github.com/MalithGihan/mindmap-service/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves document upload, mind-map generation and saved views over HTTP, plus the static frontend when configured.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	cache, err := store.NewExtractCache(cfg.Storage.CacheSize)
	if err != nil {
		return err
	}

	synth, gen, err := newSynthesizer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	opts := server.Options{
		StaticDir:      cfg.Server.StaticDir,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if p, ok := gen.(fusion.Pinger); ok {
		opts.Pinger = p
	}

	srv := server.New(newDispatcher(cfg, logger), synth, st, cache, logger, opts)
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mindmap-service listening",
			zap.String("addr", httpSrv.Addr),
			zap.String("provider", gen.Name()),
			zap.String("storage", cfg.Storage.Driver))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
