package accounts

import (
	"sync"

	"github.com/rzbill/blocklog/internal/locator"
)

// keyedMutex hands out one mutex per address and forgets it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[locator.Address]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[locator.Address]*refMutex)}
}

// Lock acquires the mutex for addr and returns its release func.
func (k *keyedMutex) Lock(addr locator.Address) func() {
	k.mu.Lock()
	m, ok := k.locks[addr]
	if !ok {
		m = &refMutex{}
		k.locks[addr] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, addr)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
