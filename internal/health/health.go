// Package health tracks bot readiness and serves it over the standard gRPC
// health protocol.
package health

import (
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync/atomic"

	"github.com/tyemirov/pastebot/pkg/grpcutil"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name reported alongside the overall status.
const ServiceName = "pastebot.Bot"

// Reporter records whether the bot is connected to Discord and mirrors that
// state into a gRPC health server.
type Reporter struct {
	ready        atomic.Bool
	healthServer *grpchealth.Server
}

// NewReporter creates a Reporter that starts out not serving.
func NewReporter() *Reporter {
	reporter := &Reporter{healthServer: grpchealth.NewServer()}
	reporter.publish(false)
	return reporter
}

// SetReady updates readiness.
func (reporter *Reporter) SetReady(ready bool) {
	reporter.ready.Store(ready)
	reporter.publish(ready)
}

// Ready reports the last readiness value.
func (reporter *Reporter) Ready() bool {
	return reporter.ready.Load()
}

// Shutdown marks every service as not serving and ignores later updates.
func (reporter *Reporter) Shutdown() {
	reporter.ready.Store(false)
	reporter.healthServer.Shutdown()
}

func (reporter *Reporter) publish(ready bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	reporter.healthServer.SetServingStatus("", status)
	reporter.healthServer.SetServingStatus(ServiceName, status)
}

// Server hosts the gRPC health service.
type Server struct {
	listenAddr string
	grpcServer *grpc.Server
	logger     *slog.Logger
}

// NewServer wires the reporter's health service into a gRPC server.
func NewServer(listenAddr string, reporter *Reporter, logger *slog.Logger) (*Server, error) {
	if strings.TrimSpace(listenAddr) == "" {
		return nil, errors.New("health: listen address is required")
	}
	if reporter == nil {
		return nil, errors.New("health: reporter is required")
	}
	if logger == nil {
		return nil, errors.New("health: logger is required")
	}
	grpcServer := grpc.NewServer(grpcutil.ServerOptions()...)
	healthpb.RegisterHealthServer(grpcServer, reporter.healthServer)
	return &Server{
		listenAddr: listenAddr,
		grpcServer: grpcServer,
		logger:     logger,
	}, nil
}

// Start listens on the configured address and blocks until Stop.
func (server *Server) Start() error {
	listener, listenErr := net.Listen("tcp", server.listenAddr)
	if listenErr != nil {
		return listenErr
	}
	return server.Serve(listener)
}

// Serve accepts connections on listener and blocks until Stop.
func (server *Server) Serve(listener net.Listener) error {
	server.logger.Info("gRPC health server listening", "address", listener.Addr().String())
	if serveErr := server.grpcServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
		return serveErr
	}
	return nil
}

// Stop drains in-flight health checks and closes listeners.
func (server *Server) Stop() {
	server.grpcServer.GracefulStop()
}
