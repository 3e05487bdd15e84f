package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	clientcmd "github.com/rzbill/blocklog/internal/cmd/client"
	serverrun "github.com/rzbill/blocklog/internal/cmd/server"
	cfgpkg "github.com/rzbill/blocklog/internal/config"
	pebblestore "github.com/rzbill/blocklog/internal/storage/pebble"
	logpkg "github.com/rzbill/blocklog/pkg/log"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "blocklog",
		Short: "Blocklog runtime CLI",
		Long:  "Blocklog keeps one append-only event log per key in address-derived storage slots. This CLI manages the server and basic operations.",
		// errors are reported through the logger below
		SilenceErrors: true,
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start blocklog server (gRPC and HTTP)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			grpcAddr, _ := cmd.Flags().GetString("grpc")
			httpAddr, _ := cmd.Flags().GetString("http")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			fsyncIntervalMs, _ := cmd.Flags().GetInt("fsync-interval-ms")
			configPath, _ := cmd.Flags().GetString("config")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			mode, err := pebblestore.ParseFsyncMode(fsyncMode)
			if err != nil {
				return fmt.Errorf("--fsync: %w", err)
			}

			cfg := cfgpkg.Default()
			if configPath != "" {
				if cfg, err = cfgpkg.Load(configPath); err != nil {
					return err
				}
			}
			cfgpkg.FromEnv(&cfg)
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFormat != "" {
				cfg.Log.Format = logFormat
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:       dataDir,
				GRPCAddr:      grpcAddr,
				HTTPAddr:      httpAddr,
				Fsync:         mode,
				FsyncInterval: time.Duration(fsyncIntervalMs) * time.Millisecond,
				Config:        cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("grpc", ":50051", "gRPC listen address (empty disables)")
	serverStartCmd.Flags().String("http", ":8080", "HTTP listen address (empty disables)")
	serverStartCmd.Flags().String("fsync", "always", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms (default 5)")
	serverStartCmd.Flags().String("config", os.Getenv("BLOCKLOG_CONFIG"), "Config file (.json, .yaml or .yml)")
	serverStartCmd.Flags().String("log-level", "", "Log level: debug|info|warn|error (overrides config and BLOCKLOG_LOG_LEVEL)")
	serverStartCmd.Flags().String("log-format", "", "Log format: text|json|tint")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// log commands
	rootCmd.AddCommand(clientcmd.NewLogCommand(apiURL))

	if err := rootCmd.Execute(); err != nil {
		logpkg.NewLogger(logpkg.WithOutput(logpkg.NewConsoleOutput())).Error("command failed", logpkg.Err(err))
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("BLOCKLOG_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
