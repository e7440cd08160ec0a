package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tyemirov/pastebot/pkg/grpcutil"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	defaultServerAddress    = "localhost:50051"
	defaultOperationTimeout = 5 * time.Second
)

// ErrNotServing indicates the checked service reported a non-serving status.
var ErrNotServing = errors.New("client: service is not serving")

// Settings configures a HealthClient.
type Settings struct {
	ServerAddress    string
	OperationTimeout time.Duration
}

// HealthClient is a thin wrapper over the gRPC health client.
type HealthClient struct {
	conn             *grpc.ClientConn
	grpcClient       healthpb.HealthClient
	operationTimeout time.Duration
	logger           *slog.Logger
}

// NewHealthClient creates a HealthClient. An empty address defaults to "localhost:50051".
func NewHealthClient(logger *slog.Logger, settings Settings) (*HealthClient, error) {
	serverAddress := strings.TrimSpace(settings.ServerAddress)
	if serverAddress == "" {
		serverAddress = defaultServerAddress
	}
	if strings.HasPrefix(serverAddress, ":") {
		serverAddress = "localhost" + serverAddress
	}
	operationTimeout := settings.OperationTimeout
	if operationTimeout <= 0 {
		operationTimeout = defaultOperationTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	conn, err := grpc.NewClient(serverAddress, grpcutil.DialOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client for %s: %w", serverAddress, err)
	}

	return &HealthClient{
		conn:             conn,
		grpcClient:       healthpb.NewHealthClient(conn),
		operationTimeout: operationTimeout,
		logger:           logger,
	}, nil
}

// Close closes the underlying gRPC connection.
func (clientInstance *HealthClient) Close() error {
	return clientInstance.conn.Close()
}

// Check asks for the status of service ("" for the whole process) and returns
// ErrNotServing unless the answer is SERVING.
// Note: Errors are simply returned without logging here.
func (clientInstance *HealthClient) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, clientInstance.operationTimeout)
	defer cancel()

	resp, err := clientInstance.grpcClient.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return resp.GetStatus(), fmt.Errorf("%w: %s", ErrNotServing, resp.GetStatus())
	}
	return resp.GetStatus(), nil
}

// WaitUntilServing polls Check until the service is serving or ctx ends.
// It logs errors only here, so duplicate logging is avoided.
func (clientInstance *HealthClient) WaitUntilServing(ctx context.Context, service string, pollInterval time.Duration) error {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	for {
		_, err := clientInstance.Check(ctx, service)
		if err == nil {
			return nil
		}
		clientInstance.logger.Debug("Health check not passing yet", "service", service, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %q to serve: %w", service, err)
		case <-time.After(pollInterval):
		}
	}
}
