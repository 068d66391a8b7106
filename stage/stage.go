// Package stage implements the runtime shared by every pipeline stage: one
// worker goroutine draining a bounded inbox, applying a transform, and
// forwarding its result to a downstream hook, terminated by the in-band
// sentinel token.
package stage

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/outpostlabs/analyzer/queue"
	"github.com/outpostlabs/analyzer/signal"
)

// Sentinel is the in-band token that traverses the whole pipeline and ends
// every worker. It is forwarded verbatim, without transformation, by every
// stage it passes through.
const Sentinel = "<END>"

// Transform maps one input line to at most one output line. Returning a
// non-nil error is reserved for conditions the transform itself considers
// exceptional; the ordinary "nothing to forward" case is Drop(), not an
// error.
type Transform func(s string) (Result, error)

// ForwardFunc is the downstream stage's PlaceWork, captured as a plain
// callable, the capability-value replacement for a bare function pointer
// that the design calls for, so each stage instance binds to a distinct
// downstream target without any symbol-namespace trick.
type ForwardFunc func(s string) error

// Module is the interface a registered stage constructor returns: the six
// operations of the stage module contract, rendered as methods. It is also
// the full public surface of Stage itself.
type Module interface {
	Init(queueSize int) error
	Name() string
	Attach(forward ForwardFunc)
	PlaceWork(s string) error
	WaitFinished()
	Fini() error
}

// Errors describing lifecycle violations against a Stage.
var (
	ErrNotInitialized     = errors.New("stage: not initialized")
	ErrAlreadyInitialized = errors.New("stage: already initialized")
)

// Stage owns one inbox queue, one worker goroutine, one transform, and an
// optional forward hook to the next stage. The transform is never invoked
// concurrently with itself: exactly one worker services this stage's inbox.
type Stage struct {
	name      string
	transform Transform
	log       *zap.SugaredLogger

	initMu      sync.Mutex
	initialized bool
	finalizeMu  sync.Mutex
	finalized   bool

	inbox   *queue.Queue
	forward ForwardFunc

	ready *signal.Signal
	wg    sync.WaitGroup
}

// New constructs a Stage bound to name and transform. The returned value
// is not usable until Init succeeds.
func New(name string, transform Transform, log *zap.SugaredLogger) *Stage {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Stage{
		name:      name,
		transform: transform,
		log:       log,
		ready:     signal.New(),
	}
}

// Name returns the stage's display name.
func (s *Stage) Name() string {
	return s.name
}

// Init allocates the inbox queue and starts the worker, blocking until the
// worker's startup handshake completes: callers may PlaceWork immediately
// after Init returns.
func (s *Stage) Init(queueSize int) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.initialized {
		return fmt.Errorf("stage %q: %w", s.name, ErrAlreadyInitialized)
	}

	q, err := queue.New(queueSize)
	if err != nil {
		return fmt.Errorf("stage %q: %w", s.name, err)
	}
	s.inbox = q

	s.wg.Add(1)
	go s.run()

	s.ready.Wait()
	s.initialized = true
	s.log.Infow("stage initialized", "stage", s.name, "queue_capacity", q.Cap())
	return nil
}

// Attach sets the downstream put. It must be called at most once, before
// input starts flowing.
func (s *Stage) Attach(forward ForwardFunc) {
	s.forward = forward
}

// PlaceWork enqueues a copy of s onto the stage's inbox, blocking while the
// inbox is full.
func (s *Stage) PlaceWork(v string) error {
	if !s.initialized {
		return fmt.Errorf("stage %q: %w", s.name, ErrNotInitialized)
	}
	return s.inbox.Put(v)
}

// WaitFinished blocks until this stage has observed the sentinel.
func (s *Stage) WaitFinished() {
	if s.inbox == nil {
		return
	}
	s.inbox.WaitFinished()
}

// Fini stops the worker and releases the stage's resources. It is
// idempotent: calling it once or twice on a successfully initialized stage
// yields the same final state.
func (s *Stage) Fini() error {
	s.finalizeMu.Lock()
	defer s.finalizeMu.Unlock()
	if s.finalized {
		return nil
	}
	if s.inbox != nil {
		s.inbox.RequestShutdown()
		s.wg.Wait()
		s.inbox.Destroy()
	}
	s.finalized = true
	return nil
}

// run is the worker loop. Its first action is always to raise ready,
// unblocking Init.
func (s *Stage) run() {
	defer s.wg.Done()
	s.ready.Raise()

	for {
		v, ok := s.inbox.Get()
		if !ok {
			// The inbox was nudged or destroyed with nothing queued:
			// shutdown requested without a sentinel having arrived.
			s.log.Debugw("stage worker exiting without sentinel", "stage", s.name)
			return
		}

		if v == Sentinel {
			if s.forward != nil {
				if err := s.forward(v); err != nil {
					s.log.Warnw("forwarding sentinel failed", "stage", s.name, "error", err)
				}
			}
			s.inbox.SignalFinished()
			s.log.Infow("stage observed sentinel", "stage", s.name)
			return
		}

		result, err := s.transform(v)
		if err != nil {
			s.log.Warnw("transform returned an error", "stage", s.name, "error", err)
			continue
		}
		if result.Dropped() {
			s.log.Warnw("transform dropped item", "stage", s.name)
			continue
		}

		if s.forward == nil {
			continue
		}
		if err := s.forward(result.Value()); err != nil {
			s.log.Warnw("forward hook failed", "stage", s.name, "error", err)
		}
	}
}
