package locator

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

const (
	// SeedPrefix namespaces event log slots within the program.
	SeedPrefix = "event_log"

	MaxSeeds   = 16
	MaxSeedLen = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	// ErrAddressSpaceExhausted is returned when no bump yields an off-curve address.
	ErrAddressSpaceExhausted = errors.New("address space exhausted")
	// ErrInvalidSeeds is returned when a seed/bump combination lands on the curve.
	ErrInvalidSeeds = errors.New("derived address is on the ed25519 curve")
	// ErrMaxSeedLength is returned for too many or too long seeds.
	ErrMaxSeedLength = errors.New("seed length exceeds limit")
)

// CreateAddress computes the address for seeds and an explicit bump.
func CreateAddress(programID Address, bump byte, seeds ...[]byte) (Address, error) {
	if len(seeds)+1 > MaxSeeds {
		return Address{}, fmt.Errorf("%w: %d seeds", ErrMaxSeedLength, len(seeds))
	}
	h := sha256.New()
	for _, s := range seeds {
		if len(s) > MaxSeedLen {
			return Address{}, fmt.Errorf("%w: %d bytes", ErrMaxSeedLength, len(s))
		}
		h.Write(s)
	}
	h.Write([]byte{bump})
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var out Address
	copy(out[:], h.Sum(nil))
	if onCurve(out[:]) {
		return Address{}, ErrInvalidSeeds
	}
	return out, nil
}

// FindAddress searches bumps 255..1 and returns the first off-curve address.
func FindAddress(programID Address, seeds ...[]byte) (Address, byte, error) {
	for bump := 255; bump > 0; bump-- {
		addr, err := CreateAddress(programID, byte(bump), seeds...)
		if errors.Is(err, ErrInvalidSeeds) {
			continue
		}
		if err != nil {
			return Address{}, 0, err
		}
		return addr, byte(bump), nil
	}
	return Address{}, 0, ErrAddressSpaceExhausted
}

func onCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// KeySeeds returns the seed list for an event log key.
func KeySeeds(key uint64) [][]byte {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], key)
	return [][]byte{[]byte(SeedPrefix), le[:]}
}

// Locator maps event log keys to slot addresses for one program.
type Locator struct {
	programID Address
}

// New returns a Locator for programID.
func New(programID Address) *Locator { return &Locator{programID: programID} }

// ProgramID returns the program the addresses are derived under.
func (l *Locator) ProgramID() Address { return l.programID }

// Derive returns the slot address and derivation tag for key.
func (l *Locator) Derive(key uint64) (Address, byte, error) {
	return FindAddress(l.programID, KeySeeds(key)...)
}

// Verify reports whether addr is the slot for key under tag. It costs one
// hash, not a search.
func (l *Locator) Verify(key uint64, tag byte, addr Address) bool {
	got, err := CreateAddress(l.programID, tag, KeySeeds(key)...)
	return err == nil && got == addr
}
