package locator

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// AddressLen is the byte length of an Address.
const AddressLen = 32

// Address identifies a storage slot or a program.
type Address [AddressLen]byte

// ErrInvalidAddress is returned when text does not decode to 32 bytes.
var ErrInvalidAddress = errors.New("invalid address")

// String returns the base58 form.
func (a Address) String() string { return base58.Encode(a[:]) }

// Bytes returns a copy of the raw bytes.
func (a Address) Bytes() []byte { return append([]byte(nil), a[:]...) }

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool { return a == Address{} }

// ParseAddress decodes a base58 address.
func ParseAddress(s string) (Address, error) {
	var out Address
	b, err := base58.Decode(s)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(b) != AddressLen {
		return out, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidAddress, AddressLen, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// MustParseAddress is ParseAddress for constants; it panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(b []byte) error {
	parsed, err := ParseAddress(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
