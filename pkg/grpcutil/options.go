// Package grpcutil holds the gRPC settings shared by the health endpoint and
// its health client.
package grpcutil

import (
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// MaxMessageSizeBytes bounds health messages in both directions.
const MaxMessageSizeBytes = 64 * 1024

// ServerOptions returns the options every pastebot gRPC server uses.
func ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.MaxRecvMsgSize(MaxMessageSizeBytes),
		grpc.MaxSendMsgSize(MaxMessageSizeBytes),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             10 * time.Second,
			PermitWithoutStream: true,
		}),
	}
}

// DialOptions returns the options every pastebot gRPC client uses. The health
// endpoint is plaintext and meant for loopback or cluster-internal health checks.
func DialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(MaxMessageSizeBytes),
			grpc.MaxCallSendMsgSize(MaxMessageSizeBytes),
		),
	}
}
