package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	healthapi "rental-gateway/internal/api/grpc"
	httpapi "rental-gateway/internal/api/http"
	"rental-gateway/internal/config"
	"rental-gateway/internal/downstream/httpclient"
	"rental-gateway/internal/events"
	"rental-gateway/internal/jobs"
	"rental-gateway/internal/logger"
	"rental-gateway/internal/observability"
	"rental-gateway/internal/repository"
	"rental-gateway/internal/repository/postgres"
	"rental-gateway/internal/scheduler"
	"rental-gateway/internal/service"
)

const serviceVersion = "1.0.0"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting rental gateway...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "health_address", cfg.GetHealthAddress())
	logger.Info("Downstream configuration",
		"cars", cfg.Downstream.Cars.BaseURL,
		"rental", cfg.Downstream.Rental.BaseURL,
		"payment", cfg.Downstream.Payment.BaseURL,
		"timeout", cfg.Downstream.Timeout)

	if err := run(cfg); err != nil {
		logger.Error("Gateway stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Gateway stopped. Goodbye!")
}

func run(cfg *config.Config) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize tracing
	tp, otelShutdown, err := observability.SetupTracing(ctx, observability.Options{
		Enabled:        cfg.Otel.Enabled,
		Endpoint:       cfg.Otel.Endpoint,
		URLPath:        cfg.Otel.URLPath,
		Insecure:       cfg.Otel.Insecure,
		ServiceName:    cfg.Otel.ServiceName,
		ServiceVersion: serviceVersion,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = errors.Join(err, otelShutdown(shutdownCtx))
	}()

	// Initialize downstream clients
	httpClient := httpclient.NewHTTPClient(cfg.Downstream.Timeout)
	inventory := httpclient.NewInventoryClient(httpclient.Options{
		BaseURL:    cfg.Downstream.Cars.BaseURL,
		HealthURL:  cfg.Downstream.Cars.HealthURL,
		Timeout:    cfg.Downstream.Timeout,
		HTTPClient: httpClient,
	})
	rentals := httpclient.NewRentalClient(httpclient.Options{
		BaseURL:    cfg.Downstream.Rental.BaseURL,
		HealthURL:  cfg.Downstream.Rental.HealthURL,
		Timeout:    cfg.Downstream.Timeout,
		HTTPClient: httpClient,
	})
	payments := httpclient.NewPaymentClient(httpclient.Options{
		BaseURL:    cfg.Downstream.Payment.BaseURL,
		HealthURL:  cfg.Downstream.Payment.HealthURL,
		Timeout:    cfg.Downstream.Timeout,
		HTTPClient: httpClient,
	})

	// Initialize failure recorders
	var recorders []service.FailureRecorder
	var store *postgres.Store
	if cfg.Database.Enabled {
		logger.Debug("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		var db *sql.DB
		db, err = postgres.Open(ctx, cfg.GetDatabaseConnectionString())
		if err != nil {
			return err
		}
		store = postgres.NewStore(db)
		defer store.Close()
		recorders = append(recorders, service.RecorderFunc(store.FailureRepository.Create))
	} else {
		logger.Info("Failure journal disabled")
	}
	if cfg.KafkaEnabled() {
		publisher, perr := events.NewFailurePublisher(events.Options{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			ClientID: cfg.Otel.ServiceName,
		}, tp)
		if perr != nil {
			return perr
		}
		defer publisher.Close()
		recorders = append(recorders, service.RecorderFunc(publisher.PublishFailure))
		logger.Info("Publishing failure events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	// Initialize services
	gatewaySvc := service.NewGatewayService(inventory, rentals, payments, service.MultiRecorder(recorders...))

	// Health server and downstream probe
	healthServer := healthapi.NewHealthServer()
	healthLis, err := net.Listen("tcp", cfg.GetHealthAddress())
	if err != nil {
		return err
	}
	go func() {
		if serr := healthServer.Serve(healthLis); serr != nil {
			logger.Error("gRPC health server error", "error", serr)
		}
	}()
	defer healthServer.Stop()

	var journal repository.FailureRepository
	if store != nil {
		journal = store.FailureRepository
	}
	jobRunner := jobs.NewJobRunner(journal, &jobs.Clients{
		Inventory: inventory,
		Rentals:   rentals,
		Payments:  payments,
	}, healthServer, cfg)
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		return err
	}
	go jobRunner.ProbeDownstream()
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// HTTP edge
	handler := httpapi.NewGatewayHandler(gatewaySvc)
	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.NewRouter(handler, httpapi.RouterOptions{AllowedOrigins: cfg.Server.CORSAllowedOrigins}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srvErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case serr := <-srvErr:
		if !errors.Is(serr, http.ErrServerClosed) {
			return serr
		}
		return nil
	case <-ctx.Done():
		stop()
		logger.Info("Shutdown signal received, draining requests...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
