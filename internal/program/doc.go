// Package program is the event log program: it turns CreateLog and
// AppendEvent instructions into validated, all-or-nothing mutations of
// address-derived slots.
//
// Every rejection is an *Error carrying a stable code (6000+) and a Kind that
// transports translate into status codes. Callers are identified by a
// non-empty principal; optional CEL policies may further restrict them.
//
// Example:
//
//	p, _ := program.New(accounts.NewStore(db), program.Options{ProgramID: id, Logger: logger})
//	addr, _, _ := p.CreateLog(ctx, "alice", 42)
//	n, err := p.AppendEvent(ctx, "alice", 42, []byte{0xAA, 0xBB})
package program
