package accounts

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/rzbill/blocklog/internal/locator"
	pebblestore "github.com/rzbill/blocklog/internal/storage/pebble"
)

// MaxPermittedDataIncrease caps the size of a single allocation.
const MaxPermittedDataIncrease = 10 * 1024

var (
	ErrAccountExists   = errors.New("slot already exists")
	ErrAccountNotFound = errors.New("slot not found")
	ErrSpaceTooLarge   = errors.New("slot size exceeds allocation limit")
	ErrAccountResized  = errors.New("slot data length changed")
	ErrOwnerChanged    = errors.New("slot owner changed")
	ErrCorruptAccount  = errors.New("slot value corrupt")
)

// Account is a decoded slot.
type Account struct {
	Address locator.Address
	Owner   locator.Address
	Data    []byte
}

// Store persists slots in Pebble with exclusive per-address access.
type Store struct {
	db    *pebblestore.DB
	locks *keyedMutex
}

// NewStore returns a Store backed by db.
func NewStore(db *pebblestore.DB) *Store {
	return &Store{db: db, locks: newKeyedMutex()}
}

// Get returns the slot at addr or ErrAccountNotFound.
func (s *Store) Get(addr locator.Address) (*Account, error) {
	v, err := s.db.Get(KeySlot(addr))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if err != nil {
		return nil, err
	}
	return decodeAccount(addr, v)
}

// Exists reports whether a slot is allocated at addr.
func (s *Store) Exists(addr locator.Address) (bool, error) {
	return s.db.Has(KeySlot(addr))
}

// Create allocates a zeroed slot of space bytes owned by owner, lets init fill
// it, and commits. It fails with ErrAccountExists if addr is taken.
func (s *Store) Create(ctx context.Context, addr, owner locator.Address, space int, init func(data []byte) error) error {
	if space < 0 || space > MaxPermittedDataIncrease {
		return fmt.Errorf("%w: %d > %d", ErrSpaceTooLarge, space, MaxPermittedDataIncrease)
	}
	unlock := s.locks.Lock(addr)
	defer unlock()

	exists, err := s.Exists(addr)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}

	acct := &Account{Address: addr, Owner: owner, Data: make([]byte, space)}
	if init != nil {
		if err := init(acct.Data); err != nil {
			return err
		}
	}
	return s.commit(ctx, acct)
}

// Update runs fn on a private copy of the slot inside the address's exclusive
// window and commits the result only if fn succeeds. fn may rewrite Data in
// place but must not resize it or change Owner.
func (s *Store) Update(ctx context.Context, addr locator.Address, fn func(acct *Account) error) error {
	unlock := s.locks.Lock(addr)
	defer unlock()

	acct, err := s.Get(addr)
	if err != nil {
		return err
	}
	size, owner := len(acct.Data), acct.Owner
	before := append([]byte(nil), acct.Data...)

	if err := fn(acct); err != nil {
		return err
	}
	if len(acct.Data) != size {
		return fmt.Errorf("%w: %d -> %d", ErrAccountResized, size, len(acct.Data))
	}
	if acct.Owner != owner {
		return ErrOwnerChanged
	}
	if bytes.Equal(before, acct.Data) {
		return nil
	}
	return s.commit(ctx, acct)
}

func (s *Store) commit(ctx context.Context, acct *Account) error {
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(KeySlot(acct.Address), encodeAccount(acct), nil); err != nil {
		return err
	}
	return s.db.CommitBatch(ctx, b)
}

func encodeAccount(a *Account) []byte {
	out := make([]byte, 0, locator.AddressLen+len(a.Data))
	out = append(out, a.Owner[:]...)
	return append(out, a.Data...)
}

func decodeAccount(addr locator.Address, v []byte) (*Account, error) {
	if len(v) < locator.AddressLen {
		return nil, fmt.Errorf("%w: %s", ErrCorruptAccount, addr)
	}
	a := &Account{Address: addr}
	copy(a.Owner[:], v[:locator.AddressLen])
	a.Data = append([]byte(nil), v[locator.AddressLen:]...)
	return a, nil
}
