package serverrun

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	cfgpkg "github.com/rzbill/blocklog/internal/config"
	pebblestore "github.com/rzbill/blocklog/internal/storage/pebble"
	logpkg "github.com/rzbill/blocklog/pkg/log"
)

func quietLogger() logpkg.Logger {
	return logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
}

func TestDefaultDataDirIntegration(t *testing.T) {
	// Apply the fallback logic
	opts := Options{}
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.DataDir == "" {
		t.Error("DataDir should not be empty after fallback")
	}
	if !filepath.IsAbs(opts.DataDir) && !strings.HasPrefix(opts.DataDir, "./") {
		t.Errorf("DataDir should be absolute or start with ./, got %s", opts.DataDir)
	}
	if opts.DataDir != "./data" && !strings.HasSuffix(strings.ToLower(opts.DataDir), "blocklog") {
		t.Errorf("DataDir should end in blocklog, got %s", opts.DataDir)
	}
}

// TestRunIntegration verifies Run starts both transports and returns cleanly
// once its context ends.
func TestRunIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	opts := Options{
		DataDir:       t.TempDir(),
		GRPCAddr:      "127.0.0.1:0",
		HTTPAddr:      "127.0.0.1:0",
		Fsync:         pebblestore.FsyncModeNever, // Use never for faster testing
		FsyncInterval: 1 * time.Millisecond,
		Config:        cfgpkg.Default(),
		Logger:        quietLogger(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := Run(ctx, opts); err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.ProgramID = "not a key"
	err := Run(context.Background(), Options{DataDir: t.TempDir(), Config: cfg, Logger: quietLogger()})
	if err == nil {
		t.Fatalf("expected config error")
	}

	cfg = cfgpkg.Default()
	cfg.Log.Format = "xml"
	if err := Run(context.Background(), Options{DataDir: t.TempDir(), Config: cfg}); err == nil {
		t.Fatalf("expected log format error")
	}
}
