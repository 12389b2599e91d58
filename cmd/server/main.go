// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unclebandit/smsleopard-activation/internal/cache"
	"github.com/unclebandit/smsleopard-activation/internal/config"
	"github.com/unclebandit/smsleopard-activation/internal/controller"
	"github.com/unclebandit/smsleopard-activation/internal/db"
	"github.com/unclebandit/smsleopard-activation/internal/handler"
	"github.com/unclebandit/smsleopard-activation/internal/logger"
	"github.com/unclebandit/smsleopard-activation/internal/pending"
	"github.com/unclebandit/smsleopard-activation/internal/queue"
	"github.com/unclebandit/smsleopard-activation/internal/repository"
	"github.com/unclebandit/smsleopard-activation/internal/scheduler"
	"github.com/unclebandit/smsleopard-activation/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Log

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer conn.Close()
	log.Info("✅ Connected to database")

	eventRepo := &repository.EventRepository{DB: conn}
	clientRepo := &repository.ClientRepository{DB: conn}
	subscriptionRepo := &repository.SubscriptionRepository{DB: conn}
	activationLogRepo := &repository.ActivationLogRepository{DB: conn}

	svc := &service.ActivationService{
		EventRepo:        eventRepo,
		ClientRepo:       clientRepo,
		SubscriptionRepo: subscriptionRepo,
		PendingTTL:       cfg.PendingTTL,
	}

	// Without Redis, pending requests live in memory and need sweeping.
	var sweeper scheduler.Sweeper
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Could not reach Redis: %v", err)
		}
		svc.Pending = pending.NewRedisStore(rdb)
		svc.Cache = cache.NewStatsCache(rdb, cfg.StatsCacheTTL)
		log.Info("✅ Connected to Redis")
	} else {
		store := pending.NewMemoryStore()
		svc.Pending = store
		sweeper = store
		log.Warn("⚠️ REDIS_URL not set, keeping pending activations in memory")
	}

	if cfg.AMQPURL != "" {
		q, err := queue.NewAMQPQueue(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("Could not connect to RabbitMQ: %v", err)
		}
		defer q.Close()
		svc.Queue = q
		log.Info("✅ Connected to RabbitMQ")
	} else {
		q := queue.NewInMemoryQueue()
		if err := queue.StartActivationLogSubscriber(q, activationLogRepo); err != nil {
			log.Fatalf("Could not start activation log subscriber: %v", err)
		}
		svc.Queue = q
		log.Warn("⚠️ AMQP_URL not set, recording activations in-process")
	}

	housekeeping := scheduler.NewHousekeepingScheduler(sweeper, svc, log, cfg.PendingSweepCron, cfg.StatsRefreshCron)
	if err := housekeeping.Start(); err != nil {
		log.Fatalf("Could not start scheduler: %v", err)
	}

	router := controller.NewRouter(
		&controller.ActivationController{Service: svc},
		&handler.EventHandler{Service: svc},
		&handler.ClientHandler{Service: svc},
		cfg.CORSAllowedOrigins,
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("🚀 Server running on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	housekeeping.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
