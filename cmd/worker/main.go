package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/unclebandit/smsleopard-activation/internal/config"
	"github.com/unclebandit/smsleopard-activation/internal/db"
	"github.com/unclebandit/smsleopard-activation/internal/logger"
	"github.com/unclebandit/smsleopard-activation/internal/queue"
	"github.com/unclebandit/smsleopard-activation/internal/repository"
)

// The worker consumes committed activations from RabbitMQ and writes the
// activation audit log.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Log

	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required for the worker")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer conn.Close()

	q, err := queue.NewAMQPQueue(cfg.AMQPURL)
	if err != nil {
		log.Fatalf("Could not connect to RabbitMQ: %v", err)
	}
	defer q.Close()

	logRepo := &repository.ActivationLogRepository{DB: conn}
	if err := queue.StartActivationLogSubscriber(q, logRepo); err != nil {
		log.Fatalf("Failed to register consumer: %v", err)
	}

	log.Infof("Worker running, waiting for messages on %s...", queue.TopicEventActivations)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Worker stopped")
}
