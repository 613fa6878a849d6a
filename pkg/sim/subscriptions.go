package sim

import (
	"sync"

	"flightdeck/pkg/simvar"
)

// Subscriptions is a reference-counted set of variable registrations.
// A registration stays subscribed while at least one caller holds it.
type Subscriptions struct {
	mu     sync.Mutex
	counts map[simvar.Registration]int
	order  []simvar.Registration
}

// NewSubscriptions creates an empty set.
func NewSubscriptions() *Subscriptions {
	return &Subscriptions{counts: make(map[simvar.Registration]int)}
}

// Add takes one reference per registration and returns the ones that became subscribed.
func (s *Subscriptions) Add(regs ...simvar.Registration) []simvar.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added []simvar.Registration
	for _, r := range regs {
		s.counts[r]++
		if s.counts[r] == 1 {
			s.order = append(s.order, r)
			added = append(added, r)
		}
	}
	return added
}

// Remove drops one reference per registration and returns the ones no longer subscribed.
// Removing a registration that is not held is a no-op.
func (s *Subscriptions) Remove(regs ...simvar.Registration) []simvar.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []simvar.Registration
	for _, r := range regs {
		n, ok := s.counts[r]
		if !ok {
			continue
		}
		if n > 1 {
			s.counts[r] = n - 1
			continue
		}
		delete(s.counts, r)
		removed = append(removed, r)
		for i, o := range s.order {
			if o == r {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	return removed
}

// Count returns the reference count for r.
func (s *Subscriptions) Count(r simvar.Registration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[r]
}

// All returns the subscribed registrations in first-subscription order.
func (s *Subscriptions) All() []simvar.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]simvar.Registration(nil), s.order...)
}
