package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/chatdesk/internal/transport/chi"
	"github.com/kailas-cloud/chatdesk/internal/version"
)

var (
	servePort     int
	secureCookies bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web pages and JSON API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, env, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort > 0 {
			cfg.HTTP.Port = servePort
		}

		logger, err := newLogger(env, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		logger.Info("Starting chatdesk server",
			zap.String("version", version.Version),
			zap.String("commit", version.Commit),
			zap.String("env", env),
			zap.Int("http_port", cfg.HTTP.Port),
			zap.Bool("cache_enabled", cfg.Cache.Enabled),
			zap.Bool("video_search", cfg.Search.VideoEnabled),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		server := chiTransport.NewServer(chiTransport.Services{
			Chat:     a.router,
			Search:   a.search,
			Video:    a.video,
			Embed:    a.embed,
			Health:   a.health,
			Usage:    a.usage,
			Sessions: a.sessions,
		}, logger, chiTransport.WithSecureCookies(secureCookies))

		addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           server.Handler(cfg.Auth.APIKeys),
			ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
			ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("Starting HTTP server", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
		case <-ctx.Done():
			logger.Info("Received shutdown signal")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}

		logger.Info("Server stopped gracefully")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "override http.port")
	serveCmd.Flags().BoolVar(&secureCookies, "secure-cookies", false, "mark the session cookie Secure")
	rootCmd.AddCommand(serveCmd)
}
