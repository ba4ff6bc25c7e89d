package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"

	"propflow/internal/ingest/load"
	ingestmetrics "propflow/internal/ingest/metrics"
	"propflow/internal/ingest/pipeline"
	"propflow/internal/ingest/sources"
	"propflow/internal/ingest/transform"
	"propflow/internal/ingest/validate"
	"propflow/internal/platform/config"
	"propflow/internal/platform/httpserver"
	"propflow/internal/platform/logger"
	"propflow/internal/property/store"
	httptransport "propflow/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	propertyStore, cleanup, err := buildStore(cfg, log)
	if err != nil {
		log.Error("store initialization failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	metrics := ingestmetrics.New(prometheus.DefaultRegisterer)
	loader := load.New(propertyStore, load.WithLogger(log))

	manager := pipeline.NewManager(transform.New(), validate.New(), loader,
		pipeline.WithManagerLogger(log),
		pipeline.WithManagerMetrics(metrics),
		pipeline.WithSourceOptions(
			sources.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		),
	)
	for _, desc := range cfg.Sources {
		manager.Register(desc)
	}

	handler := httptransport.NewHandler(manager, log)
	router := httptransport.NewRouter(handler)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting propflow", "addr", cfg.Addr, "sources", len(cfg.Sources))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildStore selects the persistence backend: postgres when DATABASE_URL is
// set, redis when REDIS_URL is set, in-memory otherwise.
func buildStore(cfg config.Config, log *slog.Logger) (load.Store, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info("using postgres property store")
		return store.NewPostgresStore(db), func() { db.Close() }, nil

	case cfg.RedisURL != "":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(context.Background()).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		log.Info("using redis property store")
		return store.NewRedisStore(client), func() { client.Close() }, nil

	default:
		log.Info("using in-memory property store")
		return store.NewMemoryStore(), func() {}, nil
	}
}
