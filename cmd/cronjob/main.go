package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rental-gateway/internal/config"
	"rental-gateway/internal/downstream/httpclient"
	"rental-gateway/internal/jobs"
	"rental-gateway/internal/logger"
	"rental-gateway/internal/repository"
	"rental-gateway/internal/repository/postgres"
	"rental-gateway/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'reconcile-failures', 'probe-downstream', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting rental gateway cronjob runner...", "log_level", cfg.Log.Level)

	// Initialize failure journal
	var failures repository.FailureRepository
	if cfg.Database.Enabled {
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
		db, err := postgres.Open(context.Background(), cfg.GetDatabaseConnectionString())
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			log.Fatalf("Failed to connect to database: %v", err)
		}
		store := postgres.NewStore(db)
		defer store.Close()
		failures = store.FailureRepository
	}

	// Initialize downstream clients (read-only use)
	httpClient := httpclient.NewHTTPClient(cfg.Downstream.Timeout)
	clients := &jobs.Clients{
		Inventory: httpclient.NewInventoryClient(httpclient.Options{
			BaseURL:    cfg.Downstream.Cars.BaseURL,
			HealthURL:  cfg.Downstream.Cars.HealthURL,
			Timeout:    cfg.Downstream.Timeout,
			HTTPClient: httpClient,
		}),
		Rentals: httpclient.NewRentalClient(httpclient.Options{
			BaseURL:    cfg.Downstream.Rental.BaseURL,
			HealthURL:  cfg.Downstream.Rental.HealthURL,
			Timeout:    cfg.Downstream.Timeout,
			HTTPClient: httpClient,
		}),
		Payments: httpclient.NewPaymentClient(httpclient.Options{
			BaseURL:    cfg.Downstream.Payment.BaseURL,
			HealthURL:  cfg.Downstream.Payment.HealthURL,
			Timeout:    cfg.Downstream.Timeout,
			HTTPClient: httpClient,
		}),
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(failures, clients, nil, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !runJobOnce(jobRunner, *runOnce) {
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and reports whether the name was known
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) bool {
	switch jobName {
	case "reconcile-failures":
		jobRunner.ReconcileFailures()
	case "probe-downstream":
		jobRunner.ProbeDownstream()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - reconcile-failures\n")
		fmt.Printf("  - probe-downstream\n")
		fmt.Printf("  - all\n")
		return false
	}
	return true
}
