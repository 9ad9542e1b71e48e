package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/procura-erp/procura/internal/app"
	"github.com/procura-erp/procura/internal/platform/cache"
	"github.com/procura-erp/procura/internal/po"
	"github.com/procura-erp/procura/internal/po/filestore"
	"github.com/procura-erp/procura/internal/po/redistore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	if cfg.SeedData {
		if err := po.EnsureSeedData(ctx, store, logger); err != nil {
			logger.Error("seed data", slog.Any("error", err))
			os.Exit(1)
		}
	}

	service := po.NewService(store, logger)
	if err := service.Load(ctx); err != nil {
		logger.Error("initial load", slog.Any("error", err))
		os.Exit(1)
	}

	handler := po.NewHandler(logger, service)
	router := app.NewRouter(app.RouterParams{
		Logger:    logger,
		Config:    cfg,
		POHandler: handler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", slog.String("addr", cfg.AppAddr), slog.String("backend", cfg.StoreBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func openStore(ctx context.Context, cfg *app.Config) (po.Store, func(), error) {
	switch cfg.StoreBackend {
	case app.BackendRedis:
		client, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return redistore.New(client), func() { _ = client.Close() }, nil
	default:
		store, err := filestore.Open(cfg.StoreFile)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
