package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"example.com/tweetfeed/cmd/server"
	"example.com/tweetfeed/cmd/worker"
	appkafka "example.com/tweetfeed/internal/broker"
	config "example.com/tweetfeed/internal/init"
	"example.com/tweetfeed/internal/logger"
	"example.com/tweetfeed/internal/store"
)

func main() {
	// Initialize application configuration
	cfg := config.Init()
	logger.SetLevel(cfg.LogLevel)
	mode := cfg.Mode

	// Relational store holds users, tweets, media, follows and likes
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("SQLite store init failed: %v", err)
	}
	defer st.Close()

	// Configure Kafka client parameters
	kafkaCfg := appkafka.KafkaConfig{
		Brokers:      []string{cfg.KafkaBroker},
		Topic:        cfg.KafkaTopic,
		Partition:    cfg.KafkaPartition,
		GroupID:      cfg.KafkaGroupID,
		WriteTimeout: cfg.KafkaWriteTO,
		ReadTimeout:  cfg.KafkaReadTO,
	}

	// Cassandra notification timeline is optional for the server
	var notifications store.NotificationStore
	if cfg.NotificationsEnabled || mode == "worker" {
		ns, err := store.NewNotificationStore(cfg)
		if err != nil {
			log.Fatalf("Cassandra connection failed: %v", err)
		}
		defer ns.Close()
		notifications = ns
	}

	// Setup OS signal handling for graceful shutdown (SIGINT, SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run application depending on selected mode
	switch mode {
	case "server":
		var writer appkafka.KafkaWriter
		if cfg.EventsEnabled() {
			w, err := appkafka.NewKafkaWriter(kafkaCfg)
			if err != nil {
				log.Fatalf("Kafka writer init failed: %v", err)
			}
			defer w.Close()
			writer = w
		}

		s := server.New(st, server.Options{
			Notifications:   notifications,
			Events:          appkafka.NewPublisher(writer),
			CredentialKey:   cfg.CredentialSecret,
			UploadDir:       cfg.UploadDir,
			MaxUploadBytes:  cfg.MaxUploadBytes,
			RateLimitPerMin: cfg.RateLimitPerMin,
		})
		server.Run(ctx, s, cfg)
	case "worker":
		if !cfg.EventsEnabled() {
			log.Fatalf("worker mode requires KAFKA_BROKER")
		}
		reader := appkafka.NewKafkaReader(kafkaCfg)

		// Start the worker that turns events into notifications
		w := worker.New(st, notifications, reader, cfg.WorkerCount, cfg.WorkerQueueSize)
		w.Run(ctx)
		if err := w.Close(); err != nil {
			log.Printf("worker close: %v", err)
		}
	default:
		log.Fatalf("unknown mode: %s", mode)
	}

	log.Println("Shutdown completed")
}
