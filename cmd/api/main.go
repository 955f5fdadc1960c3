package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	_ "courseflow/docs"
	"courseflow/pkg/config"
	"courseflow/pkg/course"
	"courseflow/pkg/course/cache"
	"courseflow/pkg/course/filestore"
	"courseflow/pkg/course/handler"
	"courseflow/pkg/course/memory"
	pg "courseflow/pkg/course/postgres"
	"courseflow/pkg/course/sqlite"
	"courseflow/pkg/idgen"
	"courseflow/pkg/logger"
	"courseflow/pkg/otel"
)

const serviceName = "courseflow"

// @title Courses API
// @version 1.0.0
// @description A Simple Course Management API
// @host localhost:4000
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, level, serviceName, otel.GetTraceID)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(context.Background(), "shutdown", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	tp, shutdownTracing, err := otel.InitTracing(log, otel.Config{
		ServiceName: serviceName,
		Host:        cfg.Tracing.Host,
		Probability: cfg.Tracing.Probability,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	repo, closeRepo, err := openRepository(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	defer closeRepo()

	repo, closeCache, err := withCache(ctx, repo, cfg.Cache, log)
	if err != nil {
		return fmt.Errorf("init %s cache: %w", cfg.Cache.Backend, err)
	}
	defer closeCache()

	h := handler.New(repo, idgen.New(), log)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(h, tp.Tracer(serviceName), log, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", srv.Addr, "tls", cfg.Server.TLS(), "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)
		if cfg.Server.TLS() {
			errCh <- srv.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server closed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func nopClose() error { return nil }

// openRepository builds the configured course store. The returned func
// releases its resources.
func openRepository(ctx context.Context, cfg config.StoreConfig) (course.Repository, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), nopClose, nil
	case config.BackendSQLite:
		repo, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		repo := pg.New(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db.Close, nil
	default:
		store, err := filestore.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, nopClose, nil
	}
}

// withCache wraps repo in the configured read cache. An unreachable redis
// is logged, not fatal: the cache degrades to pass-through.
func withCache(ctx context.Context, repo course.Repository, cfg config.CacheConfig, log *logger.Logger) (course.Repository, func() error, error) {
	switch cfg.Backend {
	case config.CacheLRU:
		backend, err := cache.NewLRU(cfg.Size)
		if err != nil {
			return nil, nil, err
		}
		return cache.New(repo, backend, log), nopClose, nil
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn(ctx, "redis unreachable", "addr", cfg.RedisAddr, "error", err)
		}
		return cache.New(repo, cache.NewRedis(client, serviceName+":", cfg.TTL), log), client.Close, nil
	default:
		return repo, nopClose, nil
	}
}
