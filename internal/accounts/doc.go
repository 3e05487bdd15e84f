// Package accounts is the slot store: fixed-size, owner-tagged byte regions
// addressed by locator.Address and persisted in Pebble.
//
// The store provides the guarantees a record relies on:
//   - Create fails with ErrAccountExists instead of overwriting.
//   - Create and Update run inside an exclusive window per address, so two
//     requests for the same slot never interleave their read and write.
//   - Every mutation is one Pebble batch; a callback error or a cancelled
//     context leaves the stored bytes untouched.
//   - A slot keeps the size and owner it was created with.
//
// Key layout:
//
//	slot/{addr32} -> owner32 | data
package accounts
