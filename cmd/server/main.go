package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/artboard/db"
	"github.com/Clark-Hu/artboard/internal/config"
	"github.com/Clark-Hu/artboard/internal/filestore"
	"github.com/Clark-Hu/artboard/internal/gallery"
	httpserver "github.com/Clark-Hu/artboard/internal/http"
	"github.com/Clark-Hu/artboard/internal/idgen"
	"github.com/Clark-Hu/artboard/internal/repository"
	"github.com/Clark-Hu/artboard/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ids := idgen.New()

	var (
		repo   *repository.Repository
		health httpserver.HealthChecker
	)
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		st, err := openStore(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("connect database", zap.Error(err))
		}
		defer st.Close()

		repo = repository.New(st, ids)
		health = st

		// ids are timestamps; keep new ones ahead of whatever is already stored
		existing, err := repo.Artworks.List(ctx)
		if err != nil {
			logger.Fatal("load existing artworks", zap.Error(err))
		}
		for _, art := range existing {
			ids.Observe(art.ID)
		}
	default:
		repo = repository.NewMemory(ids)
	}

	files, err := openFileStore(ctx, cfg, ids, logger)
	if err != nil {
		logger.Fatal("init file store", zap.Error(err))
	}

	svc := gallery.New(repo, files, logger)
	server := httpserver.New(cfg, health, svc, files, logger)

	logger.Info("starting artboard",
		zap.String("port", cfg.Port),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("file_store", cfg.FileStore),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logger.Error("server error", zap.Error(err))
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("graceful shutdown error", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (*store.Store, error) {
	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	st, err := store.New(dbCtx, cfg.DBURL, store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	})
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(dbCtx, db.Migrations, db.MigrationsGlob); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return st, nil
}

func openFileStore(ctx context.Context, cfg config.Config, ids filestore.IDSource, logger *zap.Logger) (filestore.Store, error) {
	if cfg.FileStore != config.FileStoreS3 {
		return filestore.NewLocal(cfg.UploadDir, ids, logger), nil
	}
	return filestore.NewS3(ctx, filestore.S3Options{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Prefix:          cfg.S3Prefix,
	}, ids, logger)
}
