// Package signal implements a manual-reset ("sticky") condition latch.
//
// Unlike a counting semaphore or an auto-reset event, a Signal that has
// been raised stays raised until explicitly Reset: every waiter present at
// the time of the call, and every waiter that arrives afterward, observes
// the raised state and returns immediately. This makes signal-before-wait
// safe, which is the property the queue package relies on to avoid lost
// wakeups without holding its own mutex across a Wait.
package signal

import "sync"

// Signal is a broadcast, manual-reset latch. The zero value is not usable;
// construct one with New.
type Signal struct {
	mu       sync.Mutex
	cond     *sync.Cond
	signaled bool
}

// New returns an unsignaled Signal ready for use.
func New() *Signal {
	s := &Signal{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Raise sets the signal and wakes every current and future waiter that
// has not seen an intervening Reset. Raise is idempotent: raising an
// already-raised signal has no additional effect.
func (s *Signal) Raise() {
	s.mu.Lock()
	s.signaled = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Reset clears the signal. It does not wake anyone; a waiter blocked in
// Wait when Reset runs keeps waiting for the next Raise.
func (s *Signal) Reset() {
	s.mu.Lock()
	s.signaled = false
	s.mu.Unlock()
}

// Wait blocks until the signal is raised. If it is already raised, Wait
// returns immediately. The wait is wrapped in a loop over the predicate to
// guard against spurious wakeups from the underlying condition variable.
func (s *Signal) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.signaled {
		s.cond.Wait()
	}
}

// IsRaised reports whether the signal is currently set, without blocking.
func (s *Signal) IsRaised() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signaled
}

// Destroy marks the Signal as no longer in use. It is a no-op beyond
// documenting intent: Go's garbage collector reclaims the underlying
// sync.Cond once the last reference drops, so there is no handle to
// release. Kept so callers have one place in the lifecycle to assert that
// no waiter remains blocked on this Signal, mirroring Init/Raise/Reset/
// Wait/Destroy as the five operations of the contract.
func (s *Signal) Destroy() {}
