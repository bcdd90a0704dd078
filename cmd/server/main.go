package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"greek-row/chapterhouse/internal/api"
	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/config"
	"greek-row/chapterhouse/internal/db"
	"greek-row/chapterhouse/internal/jobs"
	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/metrics"
	"greek-row/chapterhouse/internal/routes"
	"greek-row/chapterhouse/internal/workers"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Chapterhouse starting up",
		"environment", cfg.AppEnv,
		"db_driver", cfg.Database.Driver,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	orm, err := db.InitORM(cfg.Database)
	if err != nil {
		logging.Fatal("Failed to open database (GORM)", "error", err.Error())
	}

	var sqlDB *sqlx.DB
	if cfg.Database.Driver == "postgres" {
		sqlDB, err = db.InitPostgres(cfg.Database.DSN())
	} else {
		sqlDB, err = db.SqlxFromORM(orm)
	}
	if err != nil {
		logging.Fatal("Failed to open database (sqlx)", "error", err.Error())
	}
	defer sqlDB.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = common.NewRedisClient(cfg.Redis)
		if err != nil {
			logging.Fatal("Failed to connect to Redis", "error", err.Error())
		}
		defer redisClient.Close()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsReg := metrics.NewMetricsRegistry(registry)

	deps, err := api.InitDependencies(cfg, orm, sqlDB, redisClient, metricsReg)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err.Error())
	}
	defer deps.Services.Cache.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if q, ok := deps.Services.Queue.(*common.RedisQueueService); ok {
		if err := q.CreateConsumerGroup(ctx); err != nil {
			logging.Fatal("Failed to create notification consumer group", "error", err.Error())
		}
	}

	workers.InitWorkers(ctx, cfg.Notify, deps.Services.Queue, deps.Services.Notifications, metricsReg)
	jobs.InitializeJobs(ctx, deps.Services.Announcements, deps.Services.Invitations, metricsReg)
	logging.Info("Background workers and jobs started", "notify_workers", cfg.Notify.Workers)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           routes.RegisterRoutes(deps, registry, time.Now()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("Server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server failed", "error", err.Error())
		}
	}()

	<-ctx.Done()
	logging.Info("Shutdown signal received, draining connections", "timeout", cfg.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err.Error())
	}
	logging.Info("Server stopped")
}
