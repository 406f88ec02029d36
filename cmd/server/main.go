package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shopmonitor/backend/internal/cache"
	"shopmonitor/backend/internal/config"
	"shopmonitor/backend/internal/httpapi"
	"shopmonitor/backend/internal/service"
	"shopmonitor/backend/internal/store"
	"shopmonitor/backend/internal/store/memory"
	"shopmonitor/backend/internal/store/postgres"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var repo store.Repository
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()
		repo = pg
		logger.Info("using postgres store")
	} else {
		repo = memory.NewSeeded()
		logger.Info("no DATABASE_URL set, using seeded in-memory store")
	}

	var analyticsCache cache.AnalyticsCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rc.Close()
		analyticsCache = rc
		logger.Info("analytics cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	auth := httpapi.NewAuthManager(repo, cfg.AuthSecret, cfg.AccessTokenTTL(), logger)
	if err := auth.Bootstrap(ctx); err != nil {
		return err
	}

	svc := service.New(repo, analyticsCache, cfg.AnalyticsCacheTTL(), logger)
	api := httpapi.NewServer(svc, auth, cfg.AllowedOrigin, logger)

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
