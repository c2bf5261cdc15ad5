package jobs

import (
	"time"

	"rental-gateway/internal/config"
	"rental-gateway/internal/downstream"
	"rental-gateway/internal/logger"
	"rental-gateway/internal/repository"
)

// HealthReporter receives the reachability of each downstream service.
type HealthReporter interface {
	SetServing(service string, serving bool)
}

// Clients holds the downstream clients jobs read from. Jobs never mutate
// downstream state.
type Clients struct {
	Inventory downstream.InventoryClient
	Rentals   downstream.RentalClient
	Payments  downstream.PaymentClient
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	failures repository.FailureRepository
	clients  *Clients
	health   HealthReporter
	config   *config.Config
	now      func() time.Time
}

// NewJobRunner creates a new job runner. failures may be nil when the journal
// is disabled; health may be nil when nothing serves health checks.
func NewJobRunner(failures repository.FailureRepository, clients *Clients, health HealthReporter, cfg *config.Config) *JobRunner {
	return &JobRunner{
		failures: failures,
		clients:  clients,
		health:   health,
		config:   cfg,
		now:      time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := jr.now()
	jobFunc()
	logger.Info("Job completed", "job", jobName, "duration_ms", jr.now().Sub(start).Milliseconds())
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ProbeDownstream()
	jr.ReconcileFailures()
}
