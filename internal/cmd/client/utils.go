package client

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// grpcAddrFromEnv returns the gRPC server address from BLOCKLOG_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("BLOCKLOG_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:50051"
}

// dialGRPCContext dials the blocklog gRPC endpoint with insecure transport for local/dev.
func dialGRPCContext(_ context.Context) (*grpc.ClientConn, error) {
	return grpc.NewClient(grpcAddrFromEnv(), grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// payloadFromFlags returns the event bytes from --data or --data-hex.
func payloadFromFlags(data, dataHex string) ([]byte, error) {
	switch {
	case data != "" && dataHex != "":
		return nil, fmt.Errorf("--data and --data-hex are mutually exclusive")
	case dataHex != "":
		b, err := hex.DecodeString(dataHex)
		if err != nil {
			return nil, fmt.Errorf("invalid --data-hex: %w", err)
		}
		return b, nil
	default:
		return []byte(data), nil
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
