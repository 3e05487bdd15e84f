package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	cfgpkg "github.com/rzbill/blocklog/internal/config"
	"github.com/rzbill/blocklog/internal/runtime"
	grpcserver "github.com/rzbill/blocklog/internal/server/grpc"
	httpserver "github.com/rzbill/blocklog/internal/server/http"
	pebblestore "github.com/rzbill/blocklog/internal/storage/pebble"
	logpkg "github.com/rzbill/blocklog/pkg/log"
)

type Options struct {
	DataDir       string
	GRPCAddr      string
	HTTPAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	// Logger overrides the logger built from Config.Log.
	Logger logpkg.Logger
}

// Run starts gRPC and HTTP servers and blocks until ctx is cancelled. An
// empty address disables that transport.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}

	procLogger := opts.Logger
	if procLogger == nil {
		l, err := logpkg.ApplyConfig(&opts.Config.Log)
		if err != nil {
			return err
		}
		procLogger = l
	}
	// Redirect stdlib logs (e.g., Pebble) to our logger
	logpkg.RedirectStdLog(procLogger)

	storeDir := filepath.Join(opts.DataDir, "store")
	rt, err := runtime.Open(runtime.Options{
		DataDir:       storeDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Config:        opts.Config,
		Logger:        procLogger,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	procLogger.Info("Starting blocklog server",
		logpkg.Str("grpc", opts.GRPCAddr),
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", storeDir),
		logpkg.Str("program_id", rt.Program().ID().String()),
		logpkg.Str("level", opts.Config.Log.Level),
		logpkg.Str("format", opts.Config.Log.Format),
	)

	var wg sync.WaitGroup
	var gsrv *grpcserver.Server
	if opts.GRPCAddr != "" {
		gsrv = grpcserver.New(rt, procLogger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gsrv.ListenAndServe(sctx, opts.GRPCAddr); err != nil && sctx.Err() == nil {
				procLogger.Error("grpc server failed", logpkg.Err(err))
				stop()
			}
		}()
	}

	var hsrv *httpserver.Server
	if opts.HTTPAddr != "" {
		hsrv = httpserver.New(rt, procLogger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
				procLogger.Error("http server failed", logpkg.Err(err))
				stop()
			}
		}()
	}

	<-sctx.Done()
	// Initiate graceful shutdown of servers before closing the runtime/DB to avoid races.
	if gsrv != nil {
		gsrv.Close()
	}
	if hsrv != nil {
		hsrv.Close()
	}
	wg.Wait()
	procLogger.Info("blocklog server stopped")
	return nil
}
