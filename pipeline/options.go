package pipeline

import "fmt"

// MinQueueSize and MaxQueueSize bound the --queue-size flag, per the
// command-line surface contract.
const (
	MinQueueSize = 1
	MaxQueueSize = 1_000_000
)

// MaxLineBytes is the largest line (including its terminator) the boundary
// reader accepts, per the wire format contract.
const MaxLineBytes = 1024

// Options configures a Pipeline's construction and input-processing
// policy.
type Options struct {
	// QueueSize is the capacity shared by every stage's inbox.
	QueueSize int

	// StageNames names each stage in pipeline order; must resolve in the
	// transform registry and contain at least one entry.
	StageNames []string

	// SynthesizeEnd opts into injecting the sentinel at end-of-input if
	// one never arrived in-band. Off by default: the conservative policy
	// is to let the pipeline hang in WaitFinished rather than silently
	// fabricate termination, per the design's resolved open question.
	SynthesizeEnd bool
}

// Validate checks the option values the construction of a Pipeline
// requires, independent of whether the named stages actually resolve.
func (o Options) Validate() error {
	if o.QueueSize < MinQueueSize || o.QueueSize > MaxQueueSize {
		return fmt.Errorf("queue size %d out of range [%d, %d]", o.QueueSize, MinQueueSize, MaxQueueSize)
	}
	if len(o.StageNames) == 0 {
		return fmt.Errorf("at least one stage name is required")
	}
	return nil
}
