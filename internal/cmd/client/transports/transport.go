package transports

import (
	"context"
	"fmt"
)

// Credentials identify the CLI user to the server. Token wins over Caller.
type Credentials struct {
	Token  string
	Caller string
}

// LogsTransport abstracts the transport used by the CLI (gRPC/HTTP).
type LogsTransport interface {
	// Create allocates the log for key and returns its address.
	Create(ctx context.Context, key uint64) (string, error)
	// Append adds one event and returns the log's new length.
	Append(ctx context.Context, key uint64, payload []byte) (int, error)
}

// RemoteError is a program rejection reported by the server.
type RemoteError struct {
	Name    string
	Code    uint32
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Message)
}
