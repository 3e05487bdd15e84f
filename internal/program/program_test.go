package program

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rzbill/blocklog/internal/accounts"
	"github.com/rzbill/blocklog/internal/eventlog"
	"github.com/rzbill/blocklog/internal/instruction"
	"github.com/rzbill/blocklog/internal/locator"
	"github.com/rzbill/blocklog/internal/sink"
	pebblestore "github.com/rzbill/blocklog/internal/storage/pebble"
	logpkg "github.com/rzbill/blocklog/pkg/log"
)

var testProgramID = locator.MustParseAddress("B5XNLjvDHkacwCASVVpo1EGK9L4AA7c7WdmX5qFrKLGH")

const caller = "alice"

type fixture struct {
	store *accounts.Store
	prog  *Program
	sink  *sink.Memory
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	mem := &sink.Memory{}
	opts := Options{
		ProgramID: testProgramID,
		Logger:    logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{})),
		Sink:      mem,
		Now:       func() time.Time { return time.Unix(1700000000, 0) },
	}
	for _, m := range mutate {
		m(&opts)
	}
	store := accounts.NewStore(db)
	p, err := New(store, opts)
	if err != nil {
		t.Fatalf("new program: %v", err)
	}
	return &fixture{store: store, prog: p, sink: mem}
}

func (f *fixture) record(t *testing.T, key uint64) *eventlog.Record {
	t.Helper()
	addr, _, err := f.prog.Address(key)
	if err != nil {
		t.Fatalf("address: %v", err)
	}
	acct, err := f.store.Get(addr)
	if err != nil {
		t.Fatalf("get slot: %v", err)
	}
	rec, err := eventlog.Unmarshal(acct.Data)
	if err != nil {
		t.Fatalf("decode slot: %v", err)
	}
	return rec
}

func (f *fixture) rawSlot(t *testing.T, key uint64) []byte {
	t.Helper()
	addr, _, _ := f.prog.Address(key)
	acct, err := f.store.Get(addr)
	if err != nil {
		t.Fatalf("get slot: %v", err)
	}
	return acct.Data
}

func TestCreateLogIsExclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	addr, tag, err := f.prog.CreateLog(ctx, caller, 42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if addr.String() != "GCrq8ZeKtV5Pkxdp2XHBUsS3sSU2j2BFaqfZYGe5LtEF" || tag != 254 {
		t.Fatalf("unexpected address %s/%d", addr, tag)
	}
	rec := f.record(t, 42)
	if rec.Key != 42 || rec.Tag != 254 || rec.Len() != 0 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if _, err := f.prog.AppendEvent(ctx, caller, 42, []byte{1}); err != nil {
		t.Fatalf("append: %v", err)
	}
	before := f.rawSlot(t, 42)
	_, _, err = f.prog.CreateLog(ctx, "bob", 42)
	if !errors.Is(err, ErrSlotAlreadyExists) {
		t.Fatalf("expected SlotAlreadyExists, got %v", err)
	}
	if !bytes.Equal(before, f.rawSlot(t, 42)) {
		t.Fatalf("second create modified the existing log")
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, _, err := f.prog.CreateLog(ctx, caller, 1); err != nil {
		t.Fatalf("create: %v", err)
	}
	payloads := [][]byte{[]byte("first"), {}, []byte("third")}
	for i, pl := range payloads {
		n, err := f.prog.AppendEvent(ctx, caller, 1, pl)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if n != i+1 {
			t.Fatalf("append %d returned len %d", i, n)
		}
	}
	rec := f.record(t, 1)
	if rec.Len() != len(payloads) {
		t.Fatalf("len = %d", rec.Len())
	}
	for i, pl := range payloads {
		if !bytes.Equal(rec.Events[i], pl) {
			t.Fatalf("event %d = %q, want %q", i, rec.Events[i], pl)
		}
	}
}

func TestAppendCapacityBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, _, err := f.prog.CreateLog(ctx, caller, 3); err != nil {
		t.Fatalf("create: %v", err)
	}
	full := bytes.Repeat([]byte{0xEE}, eventlog.MaxEventBytes)
	for i := 0; i < eventlog.MaxEvents; i++ {
		if _, err := f.prog.AppendEvent(ctx, caller, 3, full); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	before := f.rawSlot(t, 3)
	_, err := f.prog.AppendEvent(ctx, caller, 3, []byte{1})
	if !errors.Is(err, ErrLogFull) {
		t.Fatalf("expected LogFull, got %v", err)
	}
	if !bytes.Equal(before, f.rawSlot(t, 3)) {
		t.Fatalf("rejected append mutated the log")
	}
	if n := f.record(t, 3).Len(); n != eventlog.MaxEvents {
		t.Fatalf("len = %d", n)
	}
}

func TestAppendOversizedPayload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, _, err := f.prog.CreateLog(ctx, caller, 4); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := f.prog.AppendEvent(ctx, caller, 4, make([]byte, eventlog.MaxEventBytes+1))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected PayloadTooLarge, got %v", err)
	}
	if n := f.record(t, 4).Len(); n != 0 {
		t.Fatalf("len = %d after rejected append", n)
	}
	if _, err := f.prog.AppendEvent(ctx, caller, 4, make([]byte, eventlog.MaxEventBytes)); err != nil {
		t.Fatalf("append at limit: %v", err)
	}
}

func TestAddressIsDeterministic(t *testing.T) {
	f := newFixture(t)
	for _, key := range []uint64{0, 7, 42, ^uint64(0)} {
		a1, t1, err := f.prog.Address(key)
		if err != nil {
			t.Fatalf("address %d: %v", key, err)
		}
		a2, t2, _ := f.prog.Address(key)
		if a1 != a2 || t1 != t2 {
			t.Fatalf("address %d not deterministic", key)
		}
		created, tag, err := f.prog.CreateLog(context.Background(), caller, key)
		if err != nil {
			t.Fatalf("create %d: %v", key, err)
		}
		if created != a1 || tag != t1 {
			t.Fatalf("create %d used %s/%d, derive gave %s/%d", key, created, tag, a1, t1)
		}
	}
}

func TestAppendRejectsForeignKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addr5, _, _ := f.prog.Address(5)
	_, tag9, _ := f.prog.Address(9)
	forged := eventlog.New(9, tag9)
	_ = forged.Append([]byte("x"))
	err := f.store.Create(ctx, addr5, testProgramID, eventlog.Space, forged.MarshalTo)
	if err != nil {
		t.Fatalf("forge: %v", err)
	}
	before := f.rawSlot(t, 5)

	_, err = f.prog.AppendEvent(ctx, caller, 5, []byte("y"))
	if !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected KeyMismatch, got %v", err)
	}
	if !bytes.Equal(before, f.rawSlot(t, 5)) {
		t.Fatalf("rejected append mutated the slot")
	}
}

func TestAppendRejectsWrongTag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addr, tag, _ := f.prog.Address(5)
	forged := eventlog.New(5, tag-1)
	if err := f.store.Create(ctx, addr, testProgramID, eventlog.Space, forged.MarshalTo); err != nil {
		t.Fatalf("forge: %v", err)
	}
	_, err := f.prog.AppendEvent(ctx, caller, 5, []byte("y"))
	if !errors.Is(err, ErrDerivationMismatch) {
		t.Fatalf("expected DerivationMismatch, got %v", err)
	}
}

func TestAppendRejectsForeignSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	addr, tag, _ := f.prog.Address(10)
	other := locator.Address{0x99}
	if err := f.store.Create(ctx, addr, other, eventlog.Space, eventlog.New(10, tag).MarshalTo); err != nil {
		t.Fatalf("forge owner: %v", err)
	}
	if _, err := f.prog.AppendEvent(ctx, caller, 10, nil); !errors.Is(err, ErrAccountOwnedByWrongProgram) {
		t.Fatalf("expected AccountOwnedByWrongProgram, got %v", err)
	}

	addr, _, _ = f.prog.Address(11)
	garbage := func(data []byte) error { copy(data, "not an event log"); return nil }
	if err := f.store.Create(ctx, addr, testProgramID, eventlog.Space, garbage); err != nil {
		t.Fatalf("forge data: %v", err)
	}
	if _, err := f.prog.AppendEvent(ctx, caller, 11, nil); !errors.Is(err, ErrAccountDidNotDeserialize) {
		t.Fatalf("expected AccountDidNotDeserialize, got %v", err)
	}
}

func TestExampleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, _, err := f.prog.CreateLog(ctx, caller, 42); err != nil {
		t.Fatalf("create: %v", err)
	}
	n, err := f.prog.AppendEvent(ctx, caller, 42, []byte{0xAA, 0xBB})
	if err != nil || n != 1 {
		t.Fatalf("append: n=%d err=%v", n, err)
	}
	_, err = f.prog.AppendEvent(ctx, caller, 7, []byte{0x01})
	if !errors.Is(err, ErrSlotMissing) {
		t.Fatalf("expected SlotMissing, got %v", err)
	}
	pe, ok := AsError(err)
	if !ok || pe.Code != 6001 || pe.Kind() != KindPrecondition {
		t.Fatalf("unexpected error shape: %#v", err)
	}
	rec := f.record(t, 42)
	if rec.Len() != 1 || !bytes.Equal(rec.Events[0], []byte{0xAA, 0xBB}) {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if s := f.prog.Stats(); s.LogsCreated != 1 || s.EventsAppended != 1 || s.Rejected != 1 {
		t.Fatalf("stats: %+v", s)
	}
}

func TestMissingSigner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, _, err := f.prog.CreateLog(ctx, "", 1); !errors.Is(err, ErrMissingSigner) {
		t.Fatalf("create: expected MissingSigner, got %v", err)
	}
	if _, err := f.prog.AppendEvent(ctx, "", 1, nil); !errors.Is(err, ErrMissingSigner) {
		t.Fatalf("append: expected MissingSigner, got %v", err)
	}
}

func TestPolicies(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.CreatePolicy = `caller == "admin"`
		o.AppendPolicy = `size <= 4 && count < 2`
	})
	ctx := context.Background()
	if _, _, err := f.prog.CreateLog(ctx, caller, 1); !errors.Is(err, ErrPolicyDenied) {
		t.Fatalf("expected PolicyDenied, got %v", err)
	}
	if _, _, err := f.prog.CreateLog(ctx, "admin", 1); err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if _, err := f.prog.AppendEvent(ctx, caller, 1, []byte("12345")); !errors.Is(err, ErrPolicyDenied) {
		t.Fatalf("expected size denial, got %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := f.prog.AppendEvent(ctx, caller, 1, []byte("ok")); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if _, err := f.prog.AppendEvent(ctx, caller, 1, []byte("ok")); !errors.Is(err, ErrPolicyDenied) {
		t.Fatalf("expected count denial, got %v", err)
	}
}

func TestPolicyCompileErrors(t *testing.T) {
	for _, expr := range []string{"key +", "key + 1", "unknown_var == 1"} {
		_, err := newPolicy(expr)
		if err == nil {
			t.Fatalf("expected error for %q", expr)
		}
	}
	p, err := newPolicy("  ")
	if err != nil || !p.Allow("", 0, 0, 0) {
		t.Fatalf("blank policy should allow: %v", err)
	}
}

func TestSinkReceivesAppends(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addr, _, _ := f.prog.CreateLog(ctx, caller, 8)
	payload := []byte("hello")
	if _, err := f.prog.AppendEvent(ctx, caller, 8, payload); err != nil {
		t.Fatalf("append: %v", err)
	}
	payload[0] = 'j'
	evs := f.sink.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	ev := evs[0]
	if ev.Key != 8 || ev.Address != addr || ev.Len != 1 || string(ev.Payload) != "hello" || ev.Caller != caller {
		t.Fatalf("unexpected event: %+v", ev)
	}

	f.sink.FailWith(errors.New("broker down"))
	if n, err := f.prog.AppendEvent(ctx, caller, 8, []byte("again")); err != nil || n != 2 {
		t.Fatalf("sink failure must not fail the append: n=%d err=%v", n, err)
	}
}

func TestProcessRaw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	data, err := instruction.Encode(instruction.CreateLog{Key: 42})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	res, err := f.prog.ProcessRaw(ctx, caller, data)
	if err != nil {
		t.Fatalf("process create: %v", err)
	}
	if res.Instruction != instruction.NameCreateLog || res.Tag != 254 {
		t.Fatalf("unexpected result: %+v", res)
	}
	data, _ = instruction.Encode(instruction.AppendEvent{Key: 42, Payload: []byte{0xAA}})
	res, err = f.prog.ProcessRaw(ctx, caller, data)
	if err != nil || res.Len != 1 || res.Address.String() != "GCrq8ZeKtV5Pkxdp2XHBUsS3sSU2j2BFaqfZYGe5LtEF" {
		t.Fatalf("process append: %+v %v", res, err)
	}
	if _, err := f.prog.ProcessRaw(ctx, caller, []byte{1, 2, 3}); !errors.Is(err, ErrInvalidInstruction) {
		t.Fatalf("expected InvalidInstruction, got %v", err)
	}
}

func TestConcurrentAppendsSameKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, _, err := f.prog.CreateLog(ctx, caller, 99); err != nil {
		t.Fatalf("create: %v", err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, eventlog.MaxEvents+4)
	for i := 0; i < eventlog.MaxEvents+4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.prog.AppendEvent(ctx, caller, 99, []byte{byte(i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	var ok, full int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrLogFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != eventlog.MaxEvents || full != 4 {
		t.Fatalf("ok=%d full=%d", ok, full)
	}
	seen := map[byte]bool{}
	for _, ev := range f.record(t, 99).Events {
		if seen[ev[0]] {
			t.Fatalf("duplicate event %d", ev[0])
		}
		seen[ev[0]] = true
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		err  *Error
		code Code
		name string
		kind Kind
	}{
		{ErrSlotAlreadyExists, 6000, "SlotAlreadyExists", KindPrecondition},
		{ErrSlotMissing, 6001, "SlotMissing", KindPrecondition},
		{ErrKeyMismatch, 6002, "KeyMismatch", KindPrecondition},
		{ErrLogFull, 6003, "LogFull", KindCapacity},
		{ErrPayloadTooLarge, 6004, "PayloadTooLarge", KindCapacity},
		{ErrAddressSpaceExhausted, 6005, "AddressSpaceExhausted", KindExhaustion},
		{ErrPolicyDenied, 6010, "PolicyDenied", KindPrecondition},
	}
	for _, tt := range tests {
		if tt.err.Code != tt.code || tt.err.Code.Name() != tt.name || tt.err.Kind() != tt.kind {
			t.Errorf("%s: code=%d kind=%s", tt.name, tt.err.Code, tt.err.Kind())
		}
		if !strings.HasPrefix(tt.err.Error(), tt.name) {
			t.Errorf("%s: message %q", tt.name, tt.err.Error())
		}
	}

	wrapped := classify(eventlog.ErrLogFull)
	if !errors.Is(wrapped, ErrLogFull) || !errors.Is(wrapped, eventlog.ErrLogFull) {
		t.Fatalf("classify should keep both identities: %v", wrapped)
	}
	if errors.Is(wrapped, ErrPayloadTooLarge) {
		t.Fatalf("codes must not cross-match")
	}
	plain := errors.New("disk on fire")
	if classify(plain) != plain {
		t.Fatalf("unknown errors pass through")
	}
}
