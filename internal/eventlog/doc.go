// Package eventlog defines the event log record persisted in a storage slot.
//
// # Layout
//
// A record occupies a slot of exactly Space bytes, little-endian:
//
//	discriminator[8] | key u64 | tag u8 | count u32 | { len u32 | bytes }* | zero padding
//
// The discriminator is sha256("account:EventLog")[:8] and guards against
// decoding an unrelated slot as a log. The slot is sized at creation for
// MaxEvents blobs of MaxEventBytes each, so a record can never outgrow it.
//
// # Mutation
//
// Records grow only through Append, which checks capacity before touching
// state. Callers decode a record from slot bytes, mutate it, and encode it
// back into the same slot; a failed Append leaves the record unchanged.
//
//	rec := eventlog.New(42, tag)
//	_ = rec.Append([]byte{0xAA, 0xBB})
//	buf := make([]byte, eventlog.Space)
//	_ = rec.MarshalTo(buf)
//	back, _ := eventlog.Unmarshal(buf)
package eventlog
