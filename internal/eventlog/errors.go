package eventlog

import "errors"

var (
	// ErrLogFull is returned when the record already holds MaxEvents events.
	ErrLogFull = errors.New("event log is full")
	// ErrPayloadTooLarge is returned for payloads longer than MaxEventBytes.
	ErrPayloadTooLarge = errors.New("event payload too large")
	// ErrKeyMismatch is returned when the stored key differs from the requested key.
	ErrKeyMismatch = errors.New("event log key mismatch")
	// ErrDiscriminatorMismatch is returned when slot bytes are not an event log.
	ErrDiscriminatorMismatch = errors.New("slot is not an event log")
	// ErrCorrupt is returned when slot bytes fail structural checks.
	ErrCorrupt = errors.New("event log data corrupt")
	// ErrSlotTooSmall is returned when encoding into a buffer shorter than the record.
	ErrSlotTooSmall = errors.New("slot too small for event log")
)
