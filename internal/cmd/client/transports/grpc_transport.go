// Package transports provides pluggable transport implementations for the CLI.
package transports

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	blocklogv1 "github.com/rzbill/blocklog/api/blocklog/v1"
	"github.com/rzbill/blocklog/internal/instruction"
)

// GrpcTransport implements LogsTransport over gRPC.
type GrpcTransport struct {
	dial  func(ctx context.Context) (*grpc.ClientConn, error)
	creds Credentials
}

// NewGrpcTransport constructs a new GrpcTransport using the provided dialer.
func NewGrpcTransport(dial func(ctx context.Context) (*grpc.ClientConn, error), creds Credentials) *GrpcTransport {
	return &GrpcTransport{dial: dial, creds: creds}
}

func (t *GrpcTransport) withClient(ctx context.Context, fn func(ctx context.Context, cli blocklogv1.LogServiceClient) error) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	switch {
	case t.creds.Token != "":
		ctx = metadata.AppendToOutgoingContext(ctx, blocklogv1.MetadataAuthorization, "Bearer "+t.creds.Token)
	case t.creds.Caller != "":
		ctx = metadata.AppendToOutgoingContext(ctx, blocklogv1.MetadataCaller, t.creds.Caller)
	}
	return remoteError(fn(ctx, blocklogv1.NewLogServiceClient(conn)))
}

// Create creates a log via gRPC.
func (t *GrpcTransport) Create(ctx context.Context, key uint64) (string, error) {
	var addr string
	err := t.withClient(ctx, func(ctx context.Context, cli blocklogv1.LogServiceClient) error {
		resp, err := cli.CreateLog(ctx, wrapperspb.UInt64(key))
		if err != nil {
			return err
		}
		addr = resp.GetValue()
		return nil
	})
	return addr, err
}

// Append executes an append_event instruction via gRPC.
func (t *GrpcTransport) Append(ctx context.Context, key uint64, payload []byte) (int, error) {
	data, err := instruction.Encode(instruction.AppendEvent{Key: key, Payload: payload})
	if err != nil {
		return 0, err
	}
	var n int
	err = t.withClient(ctx, func(ctx context.Context, cli blocklogv1.LogServiceClient) error {
		resp, err := cli.Execute(ctx, wrapperspb.Bytes(data))
		if err != nil {
			return err
		}
		n = int(resp.GetValue())
		return nil
	})
	return n, err
}

func remoteError(err error) error {
	if err == nil {
		return nil
	}
	if name, code, ok := blocklogv1.ProgramError(err); ok {
		return &RemoteError{Name: name, Code: code, Message: status.Convert(err).Message()}
	}
	return err
}
