package client

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	transports "github.com/rzbill/blocklog/internal/cmd/client/transports"
	"github.com/rzbill/blocklog/internal/config"
	"github.com/rzbill/blocklog/internal/locator"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

func getTransport(cmd *cobra.Command, baseURL BaseURLFunc) (transports.LogsTransport, error) {
	kind, _ := cmd.Flags().GetString("transport")
	creds := transports.Credentials{
		Token:  flagOrEnv(cmd, "token", "BLOCKLOG_TOKEN"),
		Caller: flagOrEnv(cmd, "caller", "BLOCKLOG_CALLER"),
	}
	switch kind {
	case "", "grpc":
		return transports.NewGrpcTransport(dialGRPCContext, creds), nil
	case "http":
		return transports.NewHttpTransport(baseURL(), creds), nil
	default:
		return nil, fmt.Errorf("unknown transport %q (want grpc|http)", kind)
	}
}

func flagOrEnv(cmd *cobra.Command, flag, env string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return os.Getenv(env)
}

func addTransportFlags(cmd *cobra.Command) {
	cmd.Flags().String("transport", "grpc", "Transport to use: grpc|http")
	cmd.Flags().String("caller", "", "Caller identity (or BLOCKLOG_CALLER)")
	cmd.Flags().String("token", "", "Bearer token (or BLOCKLOG_TOKEN)")
}

// NewLogCommand constructs the `log` command group and subcommands.
func NewLogCommand(baseURL BaseURLFunc) *cobra.Command {
	logCmd := &cobra.Command{Use: "log", Short: "Event log operations"}
	logCmd.AddCommand(
		newLogCreateCommand(baseURL),
		newLogAppendCommand(baseURL),
		newLogAddressCommand(),
	)
	return logCmd
}

func newLogCreateCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the event log for a key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, _ := cmd.Flags().GetUint64("key")
			tr, err := getTransport(cmd, baseURL)
			if err != nil {
				return err
			}
			addr, err := tr.Create(cmd.Context(), key)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"key": key, "address": addr})
		},
	}
	cmd.Flags().Uint64("key", 0, "Log key")
	_ = cmd.MarkFlagRequired("key")
	addTransportFlags(cmd)
	return cmd
}

func newLogAppendCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "append",
		Short: "Append one event to a key's log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, _ := cmd.Flags().GetUint64("key")
			data, _ := cmd.Flags().GetString("data")
			dataHex, _ := cmd.Flags().GetString("data-hex")
			payload, err := payloadFromFlags(data, dataHex)
			if err != nil {
				return err
			}
			tr, err := getTransport(cmd, baseURL)
			if err != nil {
				return err
			}
			n, err := tr.Append(cmd.Context(), key, payload)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"key": key, "len": n})
		},
	}
	cmd.Flags().Uint64("key", 0, "Log key")
	cmd.Flags().String("data", "", "Event payload as text")
	cmd.Flags().String("data-hex", "", "Event payload as hex")
	_ = cmd.MarkFlagRequired("key")
	addTransportFlags(cmd)
	return cmd
}

// newLogAddressCommand derives the address locally; no server round trip.
func newLogAddressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the derived address of a key's log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, _ := cmd.Flags().GetUint64("key")
			pid, _ := cmd.Flags().GetString("program-id")
			program, err := locator.ParseAddress(pid)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}
			addr, tag, err := locator.New(program).Derive(key)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"key":        key,
				"address":    addr.String(),
				"tag":        tag,
				"program_id": program.String(),
			})
		},
	}
	cmd.Flags().Uint64("key", 0, "Log key")
	cmd.Flags().String("program-id", config.DefaultProgramID, "Owning program address")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
