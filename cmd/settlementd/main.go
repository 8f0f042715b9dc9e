package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/collectiva/settlement-engine/internal/api"
	apiservice "github.com/collectiva/settlement-engine/internal/api/service"
	"github.com/collectiva/settlement-engine/internal/config"
	"github.com/collectiva/settlement-engine/internal/data/mongo"
	"github.com/collectiva/settlement-engine/internal/data/postgres"
	"github.com/collectiva/settlement-engine/internal/logger"
	"github.com/collectiva/settlement-engine/internal/platform/messaging/consumers"
	"github.com/collectiva/settlement-engine/internal/platform/messaging/producers"
	"github.com/collectiva/settlement-engine/internal/platform/persistence"
	"github.com/collectiva/settlement-engine/internal/settlement/components"
	"github.com/collectiva/settlement-engine/internal/settlement/consumer"
	"github.com/collectiva/settlement-engine/internal/settlement/publisher"
	"github.com/collectiva/settlement-engine/internal/settlement/scheduler"
	"github.com/collectiva/settlement-engine/internal/settlement/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("settlementd")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Settlement Engine",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.PayloadStore)
	if err != nil {
		log.Error("Failed to initialize payload store", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	decisionRepo := postgres.NewDecisionRepository(log, postgresDB)
	loanRepo := postgres.NewLoanRepository(log, postgresDB)
	repaymentRepo := postgres.NewRepaymentRepository(log, postgresDB)
	contributionRepo := postgres.NewContributionRepository(log, postgresDB)
	payloadStore := mongo.NewPayloadStore(log, mongoDB.Database().Collection(cfg.PayloadStore.Collection), cfg.PayloadStore.FetchTimeout)

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer might be nil if DLQTopic is not configured. Handler should be nil-safe.
	var dlqPublisher producers.DeadLetterPublisher
	if dlqProducer != nil {
		dlqPublisher = dlqProducer
	}

	// Initialize settlement events producer
	eventsProducer, err := producers.NewSettlementEventsProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize settlement events Kafka producer", "error", err)
		os.Exit(1)
	}
	outcomePublisher := publisher.NewOutcomePublisher(eventsProducer, log)

	// Initialize settlement core with separated concerns
	settler, failureRecorder := components.CreateSettler(
		postgresDB,
		payloadStore,
		decisionRepo,
		loanRepo,
		repaymentRepo,
		contributionRepo,
		log,
	)
	scanner := components.CreateScanner(decisionRepo, settler, failureRecorder, log, cfg)

	// Initialize trigger event handler
	triggerHandler := consumer.NewTriggerEventHandler(
		log,
		decisionRepo,
		settler,
		failureRecorder,
		dlqPublisher, // Pass the DLQ producer
	)

	// Initialize settlement scheduler
	settlementScheduler := scheduler.NewScheduler(
		&cfg.Scanner,
		scanner,
		outcomePublisher,
		log,
	)

	// Initialize REST server
	settlementService := apiservice.NewSettlementService(decisionRepo, scanner)
	queryService := apiservice.NewLedgerQueryService(loanRepo, repaymentRepo, contributionRepo)
	server := api.NewServer(log, cfg, settlementService, queryService)
	log.Info("REST server initialized")

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.TriggerTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.TriggerTopic, cfg.Kafka.ConsumerGroup, triggerHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Start settlement scheduler in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting settlement scheduler",
			"interval", cfg.Scanner.Interval.String(),
			"batch_size", cfg.Scanner.BatchSize,
		)
		settlementScheduler.Start(appCtx)
	}()

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shutdown the worker pool if it's a WorkerPoolScanner
	if wpScanner, ok := scanner.(*service.WorkerPoolScanner); ok {
		log.Info("Shutting down worker pool", "running_workers", wpScanner.Running())
		wpScanner.Shutdown()
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close settlement events producer
	if err = eventsProducer.Close(); err != nil {
		log.Error("Error closing settlement events Kafka producer", "error", err)
	}

	// Close DLQ Kafka producer
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	// Close Kafka consumer
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close payload store connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing payload store connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Settlement Engine shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Settlement Engine shutdown completed with errors")
	} else {
		log.Info("Settlement Engine shutdown completed successfully")
	}
}
