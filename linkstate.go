package main

import (
	"sync"
	"sync/atomic"
)

// linkState is a link's connected flag. Events reported by the radio stack
// are authoritative; an initial reading taken before the first event is
// only applied if no event has arrived in the meantime.
type linkState struct {
	mu        sync.Mutex
	seen      bool
	connected atomic.Bool
}

// event records a connection change reported by the stack.
func (s *linkState) event(connected bool) {
	s.mu.Lock()
	s.seen = true
	s.connected.Store(connected)
	s.mu.Unlock()
}

// initial records a value read or inferred outside the event stream.
// It loses to any event already recorded.
func (s *linkState) initial(connected bool) {
	s.mu.Lock()
	if !s.seen {
		s.connected.Store(connected)
	}
	s.mu.Unlock()
}

func (s *linkState) get() bool {
	return s.connected.Load()
}
