package health

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name reported for the persona API
const ServiceName = "multiverse.identity.PersonaService"

// GRPCServer exposes the checker over the standard grpc.health.v1 protocol
type GRPCServer struct {
	checker *Checker
	server  *grpc.Server
	health  *grpchealth.Server
}

func NewGRPCServer(checker *Checker) *GRPCServer {
	s := &GRPCServer{
		checker: checker,
		server:  grpc.NewServer(),
		health:  grpchealth.NewServer(),
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	s.sync()
	return s
}

// sync copies the checker's overall status into the gRPC health server
func (s *GRPCServer) sync() {
	status := healthpb.HealthCheckResponse_SERVING
	if s.checker.Overall() == StatusDown {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve accepts connections on lis and refreshes the status every period
// until ctx is done
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener, period time.Duration) error {
	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.health.Shutdown()
				s.server.GracefulStop()
				return
			case <-ticker.C:
				s.sync()
			}
		}
	}()

	s.checker.log.Info("gRPC health server listening", "addr", lis.Addr().String())
	if err := s.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// ListenAndServe is Serve on a TCP port
func (s *GRPCServer) ListenAndServe(ctx context.Context, port string, period time.Duration) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", port, err)
	}
	return s.Serve(ctx, lis, period)
}
