package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rzbill/blocklog/internal/accounts"
	cfgpkg "github.com/rzbill/blocklog/internal/config"
	"github.com/rzbill/blocklog/internal/program"
	"github.com/rzbill/blocklog/internal/sink"
	pebblestore "github.com/rzbill/blocklog/internal/storage/pebble"
	logpkg "github.com/rzbill/blocklog/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	// Logger defaults to a console logger.
	Logger logpkg.Logger
	// Sink overrides the sink selected by Config.Sink.
	Sink sink.Sink
}

// Stats aggregates storage and program counters.
type Stats struct {
	Storage pebblestore.CounterSnapshot `json:"storage"`
	Program program.Stats               `json:"program"`
}

// Runtime wires storage, config, and the program for a single-node instance.
type Runtime struct {
	db       *pebblestore.DB
	counters *pebblestore.Counters
	store    *accounts.Store
	program  *program.Program
	sink     sink.Sink
	config   cfgpkg.Config
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}

	counters := &pebblestore.Counters{}
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Metrics:       counters,
	})
	if err != nil {
		return nil, err
	}

	sk := opts.Sink
	if sk == nil {
		if k := opts.Config.Sink.Kafka; k.Enabled() {
			sk = sink.NewKafka(k.Brokers, k.Topic)
			logger.Info("kafka sink enabled", logpkg.Str("topic", k.Topic), logpkg.Int("brokers", len(k.Brokers)))
		} else {
			sk = sink.Nop{}
		}
	}

	store := accounts.NewStore(db)
	prog, err := program.New(store, program.Options{
		ProgramID:    opts.Config.Program(),
		Logger:       logger,
		Sink:         sk,
		CreatePolicy: opts.Config.Policy.Create,
		AppendPolicy: opts.Config.Policy.Append,
	})
	if err != nil {
		_ = sk.Close()
		_ = db.Close()
		return nil, err
	}
	return &Runtime{db: db, counters: counters, store: store, program: prog, sink: sk, config: opts.Config}, nil
}

// Close closes the sink and the database.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	var errs []error
	if r.sink != nil {
		errs = append(errs, r.sink.Close())
	}
	errs = append(errs, r.db.Close())
	r.db = nil
	return errors.Join(errs...)
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// Program returns the event log program.
func (r *Runtime) Program() *program.Program { return r.program }

// Store exposes the slot store (internal use only).
func (r *Runtime) Store() *accounts.Store { return r.store }

// Stats returns a snapshot of storage and program counters.
func (r *Runtime) Stats() Stats {
	return Stats{Storage: r.counters.Snapshot(), Program: r.program.Stats()}
}

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
