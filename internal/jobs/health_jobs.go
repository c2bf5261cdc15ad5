package jobs

import (
	"context"
	"time"

	"rental-gateway/internal/downstream"
	"rental-gateway/internal/logger"
)

const probeTimeout = 3 * time.Second

// ProbeDownstream pings every downstream service and publishes the result
func (jr *JobRunner) ProbeDownstream() {
	jr.runWithRecovery("ProbeDownstream", func() {
		jr.probeDownstream(context.Background())
	})
}

func (jr *JobRunner) probeDownstream(ctx context.Context) map[string]bool {
	probes := []struct {
		service string
		ping    func(context.Context) error
	}{
		{downstream.ServiceInventory, jr.clients.Inventory.Ping},
		{downstream.ServiceRental, jr.clients.Rentals.Ping},
		{downstream.ServicePayment, jr.clients.Payments.Ping},
	}

	results := make(map[string]bool, len(probes))
	for _, p := range probes {
		pingCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := p.ping(pingCtx)
		cancel()

		serving := err == nil
		results[p.service] = serving
		if !serving {
			logger.Warn("Downstream service unreachable", "service", p.service, "error", err)
		}
		if jr.health != nil {
			jr.health.SetServing(p.service, serving)
		}
	}

	logger.Debug("Downstream probe finished", "results", results)
	return results
}
