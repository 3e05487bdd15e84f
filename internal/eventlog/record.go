package eventlog

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

const (
	// MaxEvents is the number of events a single log can hold.
	MaxEvents = 32
	// MaxEventBytes bounds the size of a single event payload.
	MaxEventBytes = 256

	DiscriminatorLen = 8
	// HeaderLen covers discriminator, key and tag.
	HeaderLen = DiscriminatorLen + 8 + 1
	lenPrefix = 4
	// Space is the slot size allocated for every log.
	Space = HeaderLen + lenPrefix + MaxEvents*(lenPrefix+MaxEventBytes)
)

// Discriminator tags slot data as an event log.
var Discriminator = accountDiscriminator("EventLog")

func accountDiscriminator(name string) [DiscriminatorLen]byte {
	var d [DiscriminatorLen]byte
	sum := sha256.Sum256([]byte("account:" + name))
	copy(d[:], sum[:DiscriminatorLen])
	return d
}

// Record is one keyed event log.
type Record struct {
	Key    uint64
	Tag    byte
	Events [][]byte
}

// New returns an empty record for key with its derivation tag.
func New(key uint64, tag byte) *Record {
	return &Record{Key: key, Tag: tag, Events: [][]byte{}}
}

// Len returns the number of stored events.
func (r *Record) Len() int { return len(r.Events) }

// Full reports whether no further events fit.
func (r *Record) Full() bool { return len(r.Events) >= MaxEvents }

// CheckKey returns ErrKeyMismatch unless the record belongs to key.
func (r *Record) CheckKey(key uint64) error {
	if r.Key != key {
		return fmt.Errorf("%w: stored %d, requested %d", ErrKeyMismatch, r.Key, key)
	}
	return nil
}

// CheckAppend validates payload against the record's capacity without mutating it.
func (r *Record) CheckAppend(payload []byte) error {
	if len(payload) > MaxEventBytes {
		return fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooLarge, len(payload), MaxEventBytes)
	}
	if r.Full() {
		return fmt.Errorf("%w: %d events", ErrLogFull, MaxEvents)
	}
	return nil
}

// Append copies payload onto the end of the log.
func (r *Record) Append(payload []byte) error {
	if err := r.CheckAppend(payload); err != nil {
		return err
	}
	r.Events = append(r.Events, append([]byte{}, payload...))
	return nil
}

// EncodedLen is the number of meaningful bytes MarshalTo writes.
func (r *Record) EncodedLen() int {
	n := HeaderLen + lenPrefix
	for _, e := range r.Events {
		n += lenPrefix + len(e)
	}
	return n
}

// MarshalTo encodes the record into slot and zeroes the remainder.
func (r *Record) MarshalTo(slot []byte) error {
	if len(r.Events) > MaxEvents {
		return fmt.Errorf("%w: %d events", ErrLogFull, len(r.Events))
	}
	need := r.EncodedLen()
	if len(slot) < need {
		return fmt.Errorf("%w: need %d, have %d", ErrSlotTooSmall, need, len(slot))
	}
	for _, e := range r.Events {
		if len(e) > MaxEventBytes {
			return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(e))
		}
	}
	off := copy(slot, Discriminator[:])
	binary.LittleEndian.PutUint64(slot[off:], r.Key)
	off += 8
	slot[off] = r.Tag
	off++
	binary.LittleEndian.PutUint32(slot[off:], uint32(len(r.Events)))
	off += lenPrefix
	for _, e := range r.Events {
		binary.LittleEndian.PutUint32(slot[off:], uint32(len(e)))
		off += lenPrefix
		off += copy(slot[off:], e)
	}
	clear(slot[off:])
	return nil
}

// Unmarshal decodes a record from slot bytes. Trailing padding is ignored.
func Unmarshal(slot []byte) (*Record, error) {
	if len(slot) < HeaderLen+lenPrefix {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(slot))
	}
	if [DiscriminatorLen]byte(slot[:DiscriminatorLen]) != Discriminator {
		return nil, ErrDiscriminatorMismatch
	}
	off := DiscriminatorLen
	r := &Record{Key: binary.LittleEndian.Uint64(slot[off:])}
	off += 8
	r.Tag = slot[off]
	off++
	count := binary.LittleEndian.Uint32(slot[off:])
	off += lenPrefix
	if count > MaxEvents {
		return nil, fmt.Errorf("%w: %d events", ErrCorrupt, count)
	}
	r.Events = make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		if off+lenPrefix > len(slot) {
			return nil, fmt.Errorf("%w: truncated at event %d", ErrCorrupt, i)
		}
		n := int(binary.LittleEndian.Uint32(slot[off:]))
		off += lenPrefix
		if n > MaxEventBytes || off+n > len(slot) {
			return nil, fmt.Errorf("%w: event %d length %d", ErrCorrupt, i, n)
		}
		r.Events = append(r.Events, append([]byte{}, slot[off:off+n]...))
		off += n
	}
	return r, nil
}
