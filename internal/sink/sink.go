// Package sink delivers append notifications to downstream consumers.
package sink

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/rzbill/blocklog/internal/locator"
)

// Event describes one accepted append.
type Event struct {
	Key     uint64          `json:"key"`
	Address locator.Address `json:"address"`
	// Len is the event count after the append; the new event sits at Len-1.
	Len     int       `json:"len"`
	Payload []byte    `json:"payload"`
	Caller  string    `json:"caller"`
	Time    time.Time `json:"time"`
}

// Sink receives events after they are committed.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Memory keeps published events in order. Safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// FailWith makes subsequent Publish calls return err.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *Memory) Publish(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, ev)
	return nil
}

// Events returns a copy of everything published so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func (m *Memory) Close() error { return nil }

func messageKey(ev Event) []byte { return []byte(strconv.FormatUint(ev.Key, 10)) }

func messageValue(ev Event) ([]byte, error) { return json.Marshal(ev) }
