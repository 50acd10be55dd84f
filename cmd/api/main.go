// Package main is the entry point for the tour planner API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hearthside/tourplan/internal/api"
	"github.com/hearthside/tourplan/internal/config"
	"github.com/hearthside/tourplan/internal/geocode"
	"github.com/hearthside/tourplan/internal/health"
	"github.com/hearthside/tourplan/internal/maps"
	"github.com/hearthside/tourplan/internal/middleware"
	"github.com/hearthside/tourplan/internal/share"
	"github.com/hearthside/tourplan/internal/storage"
	"github.com/hearthside/tourplan/internal/tour"
	"github.com/hearthside/tourplan/internal/tracing"
	"github.com/hearthside/tourplan/internal/upload"
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configFile := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if *help {
		fmt.Println("Tourplan API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configFile)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	ctx := context.Background()

	tracerProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  "tourplan-api",
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	repo, storageChecker, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer closeStorage()

	store, err := tour.NewStore(ctx, repo, time.Now)
	if err != nil {
		logger.Error("failed to load tour state", "error", err)
		os.Exit(1)
	}
	logger.Info("tour state loaded", "driver", cfg.StorageDriver,
		"properties", len(store.Schedule().Properties))

	metrics := middleware.NewMetrics()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.Register(registry); err != nil {
		logger.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	publisher := share.NewPublisher(store, cfg.ShareBaseURL, time.Now)
	publishCtx, stopPublisher := context.WithCancel(ctx)
	go publisher.Run(publishCtx)

	loader := maps.NewLoader(cfg.MapTilerAPIKey, cfg.MapStyleURL, nil)
	if cfg.MapTilerAPIKey == "" {
		logger.Warn("no map API key configured, map view runs in placeholder mode")
	}

	scheduleHandlers := api.NewScheduleHandlers(store, metrics)
	handlers := api.Handlers{
		Schedule: scheduleHandlers,
		Tours:    api.NewTourHandlers(publisher, scheduleHandlers, metrics),
		Maps:     api.NewMapHandlers(store, loader, maps.NewPresenter()),
		Health:   api.NewHealthHandlers(storageChecker),
	}
	if cfg.MapTilerAPIKey != "" {
		handlers.Geocode = api.NewGeocodeHandlers(geocode.NewClient(cfg.MapTilerAPIKey, "", nil))
	}
	if cfg.UploadsEnabled() {
		uploadService, err := upload.NewService(upload.ServiceConfig{
			BucketName:      cfg.R2BucketName,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			Endpoint:        cfg.R2Endpoint,
			PublicBaseURL:   cfg.R2PublicBaseURL,
			MaxSizeMB:       cfg.R2MaxUploadSizeMB,
		})
		if err != nil {
			logger.Error("failed to create upload service", "error", err)
			os.Exit(1)
		}
		handlers.Uploads = api.NewUploadHandlers(uploadService)
	} else {
		logger.Info("photo uploads disabled, R2 is not configured")
	}

	mux := api.NewRouter(handlers)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Logging is innermost so handlers see its response writer and can
	// attach error codes via the request context.
	var handler http.Handler = mux
	handler = middleware.Logging(logger)(handler)
	handler = middleware.HTTPMetrics(metrics)(handler)
	handler = middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins})(handler)
	handler = middleware.Tracing("tourplan-api")(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopPublisher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down tracer provider", "error", err)
	}

	logger.Info("server stopped")
}

// openStorage builds the repository for the configured driver, along
// with its readiness checker and a close function.
func openStorage(ctx context.Context, cfg *config.Config) (tour.Repository, health.Checker, func(), error) {
	noop := func() {}
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return tour.NewInMemoryRepository(), nil, noop, nil

	case config.DriverFile:
		return storage.NewFileRepository(cfg.StoragePath), health.NewFileChecker(cfg.StoragePath), noop, nil

	case config.DriverRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, noop, fmt.Errorf("ping redis: %w", err)
		}
		return storage.NewRedisRepository(client), health.NewRedisChecker(client),
			func() { client.Close() }, nil

	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, noop, fmt.Errorf("ping postgres: %w", err)
		}
		repo, err := storage.NewPostgresRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, noop, err
		}
		return repo, health.NewDBChecker(db), func() { db.Close() }, nil

	default:
		return nil, nil, noop, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
