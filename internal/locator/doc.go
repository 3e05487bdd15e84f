// Package locator derives storage slot addresses from event log keys.
//
// An address is a 32-byte value computed as
//
//	sha256(seeds... || bump || programID || "ProgramDerivedAddress")
//
// and accepted only when it is not a valid ed25519 point, so no private key
// can ever sign for it. Derive searches bumps from 255 downward and returns
// the first one that yields an off-curve address. The bump is the derivation
// tag persisted in each record; Verify recomputes a single hash with it
// instead of repeating the search.
//
// Seeds for an event log are ["event_log", le64(key)], so the mapping from
// key to address is fixed for a given program ID.
package locator
