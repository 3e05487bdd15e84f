// Package instruction encodes and decodes the two requests the program
// accepts. Wire form: an 8-byte discriminator sha256("global:<name>")[:8]
// followed by little-endian arguments; byte strings carry a u32 length.
package instruction

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	NameCreateLog   = "create_log"
	NameAppendEvent = "append_event"

	discriminatorLen = 8
)

var (
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrInvalidData        = errors.New("invalid instruction data")
)

var (
	createLogDisc   = discriminator(NameCreateLog)
	appendEventDisc = discriminator(NameAppendEvent)
)

func discriminator(name string) [discriminatorLen]byte {
	var d [discriminatorLen]byte
	sum := sha256.Sum256([]byte("global:" + name))
	copy(d[:], sum[:discriminatorLen])
	return d
}

// Instruction is either CreateLog or AppendEvent.
type Instruction interface {
	Name() string
	LogKey() uint64
	isInstruction()
}

// CreateLog allocates the log for Key.
type CreateLog struct {
	Key uint64
}

// AppendEvent appends Payload to the log for Key.
type AppendEvent struct {
	Key     uint64
	Payload []byte
}

func (CreateLog) Name() string     { return NameCreateLog }
func (c CreateLog) LogKey() uint64 { return c.Key }
func (CreateLog) isInstruction()   {}

func (AppendEvent) Name() string     { return NameAppendEvent }
func (a AppendEvent) LogKey() uint64 { return a.Key }
func (AppendEvent) isInstruction()   {}

// Encode serializes ix.
func Encode(ix Instruction) ([]byte, error) {
	switch v := ix.(type) {
	case CreateLog:
		out := make([]byte, 0, discriminatorLen+8)
		out = append(out, createLogDisc[:]...)
		return binary.LittleEndian.AppendUint64(out, v.Key), nil
	case AppendEvent:
		out := make([]byte, 0, discriminatorLen+8+4+len(v.Payload))
		out = append(out, appendEventDisc[:]...)
		out = binary.LittleEndian.AppendUint64(out, v.Key)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(v.Payload)))
		return append(out, v.Payload...), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownInstruction, ix)
	}
}

// Decode parses instruction data. Trailing bytes are rejected.
func Decode(data []byte) (Instruction, error) {
	if len(data) < discriminatorLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidData, len(data))
	}
	disc, args := [discriminatorLen]byte(data[:discriminatorLen]), data[discriminatorLen:]
	switch disc {
	case createLogDisc:
		if len(args) != 8 {
			return nil, fmt.Errorf("%w: create_log args %d bytes", ErrInvalidData, len(args))
		}
		return CreateLog{Key: binary.LittleEndian.Uint64(args)}, nil
	case appendEventDisc:
		if len(args) < 12 {
			return nil, fmt.Errorf("%w: append_event args %d bytes", ErrInvalidData, len(args))
		}
		key := binary.LittleEndian.Uint64(args)
		n := binary.LittleEndian.Uint32(args[8:])
		rest := args[12:]
		if uint64(n) != uint64(len(rest)) {
			return nil, fmt.Errorf("%w: payload length %d, have %d", ErrInvalidData, n, len(rest))
		}
		return AppendEvent{Key: key, Payload: append([]byte{}, rest...)}, nil
	default:
		return nil, fmt.Errorf("%w: %x", ErrUnknownInstruction, disc)
	}
}
