// Package queue implements a bounded, blocking FIFO of owned strings: one
// consumer, any number of producers, layered directly on top of the
// manual-reset latches in the signal package.
//
// Blocking discipline: every blocking operation is a retry loop: take the
// queue's mutex, test the predicate, act on success while still holding the
// mutex, or otherwise Reset the relevant signal, release the mutex, and
// Wait on the signal before restarting from the top. The action always happens in
// the same critical section as the predicate check; a queue never releases
// its mutex between "the slot is free" and "the slot is filled", which is
// what keeps capacity from being violated when several producers race.
package queue

import (
	"errors"
	"fmt"
	"sync"

	"github.com/outpostlabs/analyzer/signal"
)

// Sentinel errors describing the lifecycle/input-validity failures a Queue
// can report, matching the taxonomy in the design's error handling section.
var (
	ErrInvalidCapacity = errors.New("queue: capacity must be a positive integer")
	ErrClosed          = errors.New("queue: closed for new work")
	ErrAlreadyDestroyed = errors.New("queue: already destroyed")
)

// Queue is a fixed-capacity ring buffer of strings, safe for one consumer
// and any number of concurrent producers.
type Queue struct {
	mu  sync.Mutex
	buf []string

	head, tail, count int

	notFull  *signal.Signal
	notEmpty *signal.Signal
	finished *signal.Signal

	shuttingDown bool
	destroyed    bool
}

// New allocates a Queue with the given capacity. capacity must be a
// positive integer; New rolls back (frees nothing, since nothing was
// allocated yet) and returns ErrInvalidCapacity otherwise.
func New(capacity int) (*Queue, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	q := &Queue{
		buf:      make([]string, capacity),
		notFull:  signal.New(),
		notEmpty: signal.New(),
		finished: signal.New(),
	}
	// The queue starts empty, so producers must not block immediately:
	// prime notFull in the signaled state per the data model.
	q.notFull.Raise()
	return q, nil
}

// Cap returns the queue's fixed capacity.
func (q *Queue) Cap() int {
	return len(q.buf)
}

// retryUntil is the shared higher-level helper the design calls out:
// it wraps the lock/predicate/wait cycle around a first-class predicate
// and action, so Put and Get don't each hand-roll the loop.
func retryUntil(mu *sync.Mutex, sig *signal.Signal, predicate func() bool, action func()) {
	for {
		mu.Lock()
		if predicate() {
			action()
			mu.Unlock()
			return
		}
		// The reset happens while the queue mutex is still held, so any
		// state change that could satisfy the predicate comes after it,
		// and that change ends with a broadcast Raise on this same signal
		// which the Wait below then observes. The mutex is released before
		// the Wait, never held across it.
		sig.Reset()
		mu.Unlock()
		sig.Wait()
	}
}

// Put blocks while the queue is full, then stores a copy of s and wakes
// one waiting consumer. The caller retains ownership of its own copy of s;
// Go string values are immutable, so storing s is itself the "copy" the
// design's ownership-transfer language describes.
func (q *Queue) Put(s string) error {
	q.mu.Lock()
	if q.destroyed {
		q.mu.Unlock()
		return ErrAlreadyDestroyed
	}
	if q.shuttingDown {
		q.mu.Unlock()
		return ErrClosed
	}
	q.mu.Unlock()

	var stored bool
	retryUntil(&q.mu, q.notFull, func() bool {
		if q.destroyed || q.shuttingDown {
			return true // fall through to the closed check below
		}
		return q.count < len(q.buf)
	}, func() {
		if q.destroyed || q.shuttingDown {
			return
		}
		q.buf[q.tail] = s
		q.tail = (q.tail + 1) % len(q.buf)
		q.count++
		stored = true
	})

	if !stored {
		return ErrClosed
	}
	q.notEmpty.Raise()
	return nil
}

// Get blocks while the queue is empty, then removes and returns the oldest
// item. Get returns ok == false only when the queue has been nudged to
// shut down (Stage.Fini's wakeup) or destroyed while empty, never as a
// result of an ordinary empty-queue wait.
func (q *Queue) Get() (s string, ok bool) {
	retryUntil(&q.mu, q.notEmpty, func() bool {
		return q.count > 0 || q.shuttingDown || q.destroyed
	}, func() {
		if q.count == 0 {
			return
		}
		s = q.buf[q.head]
		q.buf[q.head] = ""
		q.head = (q.head + 1) % len(q.buf)
		q.count--
		ok = true
	})

	if ok {
		q.notFull.Raise()
	}
	return s, ok
}

// RequestShutdown nudges the queue's not-empty latch so a consumer
// blocked in Get wakes up and observes a null pop, per the stage's
// end-of-stream protocol. Idempotent.
func (q *Queue) RequestShutdown() {
	q.mu.Lock()
	q.shuttingDown = true
	q.mu.Unlock()
	q.notEmpty.Raise()
	q.notFull.Raise()
}

// SignalFinished raises the queue's finished latch. Idempotent.
func (q *Queue) SignalFinished() {
	q.finished.Raise()
}

// WaitFinished blocks until the queue's finished latch has been raised.
func (q *Queue) WaitFinished() {
	q.finished.Wait()
}

// Len reports the number of items currently buffered.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Destroy frees any residual strings and marks the queue unusable. The
// caller must guarantee no goroutine is mid-Put/Get; Destroy does not wait
// for that on its own (Stage arranges it by joining the worker first).
// Idempotent.
func (q *Queue) Destroy() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.destroyed {
		return
	}
	for i := range q.buf {
		q.buf[i] = ""
	}
	q.count = 0
	q.head = 0
	q.tail = 0
	q.destroyed = true

	q.notFull.Destroy()
	q.notEmpty.Destroy()
	q.finished.Destroy()
}
