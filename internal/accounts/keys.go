package accounts

import "github.com/rzbill/blocklog/internal/locator"

var slotPrefix = []byte("slot/")

// KeySlot builds the Pebble key for a slot address.
func KeySlot(addr locator.Address) []byte {
	k := make([]byte, 0, len(slotPrefix)+locator.AddressLen)
	k = append(k, slotPrefix...)
	k = append(k, addr[:]...)
	return k
}
