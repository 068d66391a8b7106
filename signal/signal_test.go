package signal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitReturnsImmediatelyAfterRaise(t *testing.T) {
	s := New()
	s.Raise()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked after Raise with no intervening Reset")
	}
}

func TestRaiseIsIdempotent(t *testing.T) {
	s := New()
	s.Raise()
	s.Raise()
	require.True(t, s.IsRaised())
}

func TestResetClearsSignal(t *testing.T) {
	s := New()
	s.Raise()
	s.Reset()
	assert.False(t, s.IsRaised())
}

func TestBroadcastReleasesAllWaiters(t *testing.T) {
	s := New()
	const n = 8

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			s.Wait()
		}()
	}

	// Give every waiter a chance to block before raising.
	time.Sleep(50 * time.Millisecond)
	s.Raise()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not all waiters were released by a single Raise")
	}
}

func TestDestroyIsANoOpAndIdempotent(t *testing.T) {
	s := New()
	s.Raise()
	s.Destroy()
	s.Destroy() // must not panic

	require.True(t, s.IsRaised(), "Destroy must not alter observable state")
}

func TestWaitBlocksUntilRaised(t *testing.T) {
	s := New()
	released := make(chan struct{})
	go func() {
		s.Wait()
		close(released)
	}()

	select {
	case <-released:
		t.Fatal("Wait returned before Raise was called")
	case <-time.After(100 * time.Millisecond):
	}

	s.Raise()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Raise")
	}
}
