// Package client provides the `blocklog` command-line client.
//
// The CLI talks to the blocklog HTTP and gRPC endpoints to create event
// logs and append to them from a terminal. It is primarily intended for
// developers and operators.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it
// defaults to http://127.0.0.1:8080. The gRPC address is read from the
// BLOCKLOG_GRPC environment variable (default 127.0.0.1:50051).
//
// Usage
//
//	blocklog log create --key 42 --caller alice
//	blocklog log append --key 42 --data "hello" --caller alice
//	blocklog log append --key 42 --data-hex 00ff --transport http --token $TOKEN
//	blocklog log address --key 42
//
// Notes
//
//   - address is computed locally from --program-id and never contacts
//     the server.
//   - append over gRPC sends an encoded append_event instruction to
//     LogService.Execute; over HTTP it uses /v1/logs/append.
//   - --caller and --token fall back to BLOCKLOG_CALLER and BLOCKLOG_TOKEN.
package client
