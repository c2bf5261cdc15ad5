package grpc

import (
	"net"
	"sync"
	"time"

	"rental-gateway/internal/api/grpc/interceptor"
	"rental-gateway/internal/downstream"
	"rental-gateway/internal/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Health service names. OverallService reports the gateway as a whole and is
// serving only while every downstream service is.
const (
	OverallService   = ""
	InventoryService = downstream.ServiceInventory
	RentalService    = downstream.ServiceRental
	PaymentService   = downstream.ServicePayment
)

const defaultStopTimeout = 5 * time.Second

var downstreamServices = []string{InventoryService, RentalService, PaymentService}

// HealthServer publishes downstream reachability over grpc.health.v1.
type HealthServer struct {
	server      *grpc.Server
	health      *health.Server
	stopTimeout time.Duration

	mu      sync.Mutex
	serving map[string]bool
}

func NewHealthServer() *HealthServer {
	s := &HealthServer{
		server: grpc.NewServer(
			grpc.UnaryInterceptor(interceptor.Logging()),
		),
		health:      health.NewServer(),
		stopTimeout: defaultStopTimeout,
		serving:     make(map[string]bool, len(downstreamServices)),
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)

	// Unknown until the first probe runs.
	for _, name := range downstreamServices {
		s.health.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
	}
	s.health.SetServingStatus(OverallService, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// SetServing records the reachability of one downstream service and
// recomputes the overall status.
func (s *HealthServer) SetServing(service string, serving bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.serving[service] = serving
	s.health.SetServingStatus(service, servingStatus(serving))

	overall := true
	for _, name := range downstreamServices {
		if !s.serving[name] {
			overall = false
			break
		}
	}
	s.health.SetServingStatus(OverallService, servingStatus(overall))
}

func (s *HealthServer) Serve(lis net.Listener) error {
	logger.Info("gRPC health server listening", "address", lis.Addr().String())
	return s.server.Serve(lis)
}

// Stop marks every service as not serving and drains in-flight RPCs. Watch
// streams never end on their own, so after stopTimeout the remaining
// connections are closed.
func (s *HealthServer) Stop() {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(s.stopTimeout):
		logger.Warn("gRPC health server did not drain in time, closing connections", "timeout", s.stopTimeout)
		s.server.Stop()
		<-stopped
	}
}

func servingStatus(serving bool) healthpb.HealthCheckResponse_ServingStatus {
	if serving {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}
