package program

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rzbill/blocklog/internal/accounts"
	"github.com/rzbill/blocklog/internal/eventlog"
	"github.com/rzbill/blocklog/internal/instruction"
	"github.com/rzbill/blocklog/internal/locator"
	"github.com/rzbill/blocklog/internal/sink"
	logpkg "github.com/rzbill/blocklog/pkg/log"
)

// Options configures a Program.
type Options struct {
	ProgramID locator.Address
	Logger    logpkg.Logger
	// Sink receives an Event after every committed append. Defaults to sink.Nop.
	Sink sink.Sink
	// CreatePolicy and AppendPolicy are optional CEL expressions.
	CreatePolicy string
	AppendPolicy string
	// Now is the clock used for event timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Program executes event log instructions against a slot store.
type Program struct {
	store        *accounts.Store
	loc          *locator.Locator
	logger       logpkg.Logger
	sink         sink.Sink
	now          func() time.Time
	createPolicy policy
	appendPolicy policy

	created  atomic.Uint64
	appended atomic.Uint64
	rejected atomic.Uint64
}

// Result reports the outcome of one instruction.
type Result struct {
	Instruction string          `json:"instruction"`
	Key         uint64          `json:"key"`
	Address     locator.Address `json:"address"`
	Tag         byte            `json:"tag"`
	Len         int             `json:"len"`
}

// Stats counts instruction outcomes since construction.
type Stats struct {
	LogsCreated    uint64 `json:"logs_created"`
	EventsAppended uint64 `json:"events_appended"`
	Rejected       uint64 `json:"rejected"`
}

// New builds a Program over store. It fails only if a policy does not compile.
func New(store *accounts.Store, opts Options) (*Program, error) {
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger()
	}
	if opts.Sink == nil {
		opts.Sink = sink.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	createPol, err := newPolicy(opts.CreatePolicy)
	if err != nil {
		return nil, fmt.Errorf("create policy: %w", err)
	}
	appendPol, err := newPolicy(opts.AppendPolicy)
	if err != nil {
		return nil, fmt.Errorf("append policy: %w", err)
	}
	p := &Program{
		store:        store,
		loc:          locator.New(opts.ProgramID),
		logger:       opts.Logger.With(logpkg.Component("program")),
		sink:         opts.Sink,
		now:          opts.Now,
		createPolicy: createPol,
		appendPolicy: appendPol,
	}
	p.logger.Info("greetings from program", logpkg.Str("program_id", opts.ProgramID.String()))
	return p, nil
}

// ID returns the program address that owns every event log.
func (p *Program) ID() locator.Address { return p.loc.ProgramID() }

// Address returns where the event log for key lives and its derivation tag.
func (p *Program) Address(key uint64) (locator.Address, byte, error) {
	addr, tag, err := p.loc.Derive(key)
	return addr, tag, classify(err)
}

// Stats returns instruction counters.
func (p *Program) Stats() Stats {
	return Stats{
		LogsCreated:    p.created.Load(),
		EventsAppended: p.appended.Load(),
		Rejected:       p.rejected.Load(),
	}
}

// Process routes a decoded instruction to its handler.
func (p *Program) Process(ctx context.Context, caller string, ix instruction.Instruction) (Result, error) {
	switch ix := ix.(type) {
	case instruction.CreateLog:
		addr, tag, err := p.CreateLog(ctx, caller, ix.Key)
		return Result{Instruction: ix.Name(), Key: ix.Key, Address: addr, Tag: tag}, err
	case instruction.AppendEvent:
		n, err := p.AppendEvent(ctx, caller, ix.Key, ix.Payload)
		res := Result{Instruction: ix.Name(), Key: ix.Key, Len: n}
		if err == nil {
			res.Address, res.Tag, _ = p.loc.Derive(ix.Key)
		}
		return res, err
	default:
		p.rejected.Add(1)
		return Result{}, newError(CodeInvalidInstruction, fmt.Errorf("%w: %T", instruction.ErrUnknownInstruction, ix))
	}
}

// ProcessRaw decodes and executes wire-encoded instruction data.
func (p *Program) ProcessRaw(ctx context.Context, caller string, data []byte) (Result, error) {
	ix, err := instruction.Decode(data)
	if err != nil {
		p.rejected.Add(1)
		return Result{}, classify(err)
	}
	return p.Process(ctx, caller, ix)
}

// CreateLog allocates an empty event log for key. It fails with
// ErrSlotAlreadyExists if one exists, leaving the existing log untouched.
func (p *Program) CreateLog(ctx context.Context, caller string, key uint64) (locator.Address, byte, error) {
	addr, tag, err := p.createLog(ctx, caller, key)
	if err != nil {
		p.rejected.Add(1)
		p.logger.Debug("create rejected", logpkg.Uint64("key", key), logpkg.Err(err))
		return locator.Address{}, 0, err
	}
	p.created.Add(1)
	p.logger.Info("event log created",
		logpkg.Uint64("key", key),
		logpkg.Str("address", addr.String()),
		logpkg.Int("tag", int(tag)))
	return addr, tag, nil
}

func (p *Program) createLog(ctx context.Context, caller string, key uint64) (locator.Address, byte, error) {
	if caller == "" {
		return locator.Address{}, 0, newError(CodeMissingSigner, nil)
	}
	if !p.createPolicy.Allow(caller, key, 0, 0) {
		return locator.Address{}, 0, newError(CodePolicyDenied, fmt.Errorf("caller %q, create_log %d", caller, key))
	}
	addr, tag, err := p.loc.Derive(key)
	if err != nil {
		return locator.Address{}, 0, classify(err)
	}
	err = p.store.Create(ctx, addr, p.loc.ProgramID(), eventlog.Space, func(data []byte) error {
		return eventlog.New(key, tag).MarshalTo(data)
	})
	if err != nil {
		return locator.Address{}, 0, classify(err)
	}
	return addr, tag, nil
}

// AppendEvent appends payload to the event log for key and returns the new
// event count. On any error the stored log is unchanged.
func (p *Program) AppendEvent(ctx context.Context, caller string, key uint64, payload []byte) (int, error) {
	addr, n, err := p.appendEvent(ctx, caller, key, payload)
	if err != nil {
		p.rejected.Add(1)
		p.logger.Debug("append rejected", logpkg.Uint64("key", key), logpkg.Err(err))
		return 0, err
	}
	p.appended.Add(1)
	p.logger.Info("event appended", logpkg.Uint64("key", key), logpkg.Int("len", n))

	ev := sink.Event{
		Key:     key,
		Address: addr,
		Len:     n,
		Payload: append([]byte(nil), payload...),
		Caller:  caller,
		Time:    p.now(),
	}
	if err := p.sink.Publish(ctx, ev); err != nil {
		p.logger.Warn("sink publish failed", logpkg.Uint64("key", key), logpkg.Err(err))
	}
	return n, nil
}

func (p *Program) appendEvent(ctx context.Context, caller string, key uint64, payload []byte) (locator.Address, int, error) {
	if caller == "" {
		return locator.Address{}, 0, newError(CodeMissingSigner, nil)
	}
	addr, _, err := p.loc.Derive(key)
	if err != nil {
		return locator.Address{}, 0, classify(err)
	}

	var n int
	err = p.store.Update(ctx, addr, func(acct *accounts.Account) error {
		if acct.Owner != p.loc.ProgramID() {
			return newError(CodeAccountOwnedByWrongProgram, fmt.Errorf("owner %s", acct.Owner))
		}
		rec, err := eventlog.Unmarshal(acct.Data)
		if err != nil {
			return newError(CodeAccountDidNotDeserialize, err)
		}
		if err := rec.CheckKey(key); err != nil {
			return newError(CodeKeyMismatch, err)
		}
		if !p.loc.Verify(key, rec.Tag, addr) {
			return newError(CodeDerivationMismatch, fmt.Errorf("tag %d for key %d", rec.Tag, key))
		}
		if !p.appendPolicy.Allow(caller, key, len(payload), rec.Len()) {
			return newError(CodePolicyDenied, fmt.Errorf("caller %q, append_event %d", caller, key))
		}
		if err := rec.Append(payload); err != nil {
			return classify(err)
		}
		if err := rec.MarshalTo(acct.Data); err != nil {
			return classify(err)
		}
		n = rec.Len()
		return nil
	})
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return locator.Address{}, 0, newError(CodeSlotMissing, fmt.Errorf("key %d at %s", key, addr))
		}
		return locator.Address{}, 0, classify(err)
	}
	return addr, n, nil
}
