package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"eventboard/internal/admin"
	"eventboard/internal/admin/admin_api"
	"eventboard/internal/category"
	category_db "eventboard/internal/category/db"
	"eventboard/internal/config"
	"eventboard/internal/database/migrations"
	"eventboard/internal/events"
	eventscsv "eventboard/internal/events/csv"
	events_db "eventboard/internal/events/db"
	"eventboard/internal/events/events_api"
	"eventboard/internal/kafka"
	"eventboard/internal/logger"
	"eventboard/internal/submission"
	submission_db "eventboard/internal/submission/db"
	rediswrap "eventboard/internal/submission/redis"
	"eventboard/internal/submission/submission_api"
)

func connectPostgres(cfg config.DatabaseConfig, logger *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

// connectRedis is best-effort: the throttle degrades to allow-all when Redis
// is down, so a failed connection is a warning, not a startup failure.
func connectRedis(ctx context.Context, addr string, logger *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("REDIS", fmt.Sprintf("Redis unreachable at %s, submission throttling disabled: %v", addr, err))
		client.Close()
		return nil
	}
	logger.Info("REDIS", fmt.Sprintf("✅ Redis connection successful to %s", addr))
	return client
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Eventboard service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()

	if cfg.Admin.Token == "" {
		logger.Fatal("CONFIG", "ADMIN_TOKEN not set; refusing to serve admin routes without a shared secret")
	}

	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB := connectPostgres(cfg.Database, logger)
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.DefaultDir)
	if err := runner.Up(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	logger.Info("DATABASE", "Migrations applied")

	redisClient := connectRedis(ctx, cfg.Redis.Addr, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		logger.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()

		requiredTopics := []string{
			cfg.Kafka.Topics.SubmissionReceived,
			cfg.Kafka.Topics.SubmissionApproved,
			cfg.Kafka.Topics.SubmissionRejected,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		logger.Warn("KAFKA", "Kafka disabled, submission lifecycle events will not be published")
	}

	normalizer := category.NewNormalizer(&category_db.DB{Bun: bunDB})
	eventsDB := &events_db.DB{Bun: bunDB}
	csvReader := eventscsv.NewReader(cfg.CSV.Path)

	mergeService := events.NewMergeService(eventsDB, csvReader, normalizer, logger)

	var publisher submission.Publisher
	if producer != nil {
		publisher = producer
	}
	submissionService := submission.NewService(
		&submission_db.DB{Bun: bunDB},
		eventsDB,
		normalizer,
		publisher,
		cfg.Kafka.Topics,
		logger,
	)

	throttle := rediswrap.NewThrottle(redisClient, cfg.Redis.ThrottleTTL, logger)

	eventsHandler := events_api.NewHandler(mergeService, cfg.Server.PublicURL, logger)
	submissionHandler := submission_api.NewHandler(submissionService, throttle, logger)
	adminHandler := admin_api.NewHandler(normalizer, submissionService, mergeService, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public Routes ---
	r.Route("/api", func(r chi.Router) {
		eventsHandler.RegisterRoutes(r)
		r.Post("/submissions", submissionHandler.CreateSubmission)
	})
	logger.Info("ROUTER", "Public event and submission routes registered under /api")

	// --- Admin Routes ---
	r.Group(func(r chi.Router) {
		r.Use(admin.Middleware(cfg.Admin.Token, logger))
		r.Route("/api/admin", func(r chi.Router) {
			adminHandler.RegisterRoutes(r)
		})
	})
	logger.Info("ROUTER", "Admin routes registered under /api/admin")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Eventboard service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Eventboard service shutdown complete")
	}
}
