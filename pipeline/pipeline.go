// Package pipeline wires a sequence of stages into a single runnable
// chain: it resolves each stage name in the transform registry, attaches
// each stage's forward hook to the next stage's PlaceWork, drives a
// line-oriented input source into the first stage, and tears everything
// down in strict order: feed <END>, await each stage's finished latch in
// pipeline order, then Fini each stage in that same order.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/outpostlabs/analyzer/stage"
	"github.com/outpostlabs/analyzer/transform"
)

// CompletionLine is written to stdout once, on clean shutdown.
const CompletionLine = "Pipeline shutdown complete"

// Pipeline is an ordered chain of stages, constructed once and run once.
type Pipeline struct {
	stages  []stage.Module
	options Options
	log     *zap.SugaredLogger
}

// New resolves every name in opts.StageNames, initializes each stage with
// opts.QueueSize, and wires stage i's forward hook to stage i+1's
// PlaceWork. Any failure tears down the stages already brought up, in
// reverse order, before returning the error.
func New(opts Options, log *zap.SugaredLogger) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: invalid options: %w", err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	built := make([]stage.Module, 0, len(opts.StageNames))
	rollback := func() {
		for i := len(built) - 1; i >= 0; i-- {
			_ = built[i].Fini()
		}
	}

	for _, name := range opts.StageNames {
		mod, err := transform.New(name, log)
		if err != nil {
			rollback()
			return nil, fmt.Errorf("pipeline: resolving stage %q: %w", name, err)
		}
		if err := mod.Init(opts.QueueSize); err != nil {
			rollback()
			return nil, fmt.Errorf("pipeline: initializing stage %q: %w", name, err)
		}
		built = append(built, mod)
	}

	for i := 0; i < len(built)-1; i++ {
		next := built[i+1]
		built[i].Attach(next.PlaceWork)
	}
	// The last stage has no forward hook: its transform is a terminal
	// sink (e.g. logger prints) or its output is simply dropped.

	return &Pipeline{stages: built, options: opts, log: log}, nil
}

// Run feeds lines from in into the first stage, then executes the
// shutdown sequence once the input loop ends, writing the completion line
// to out. Run blocks until every stage reports finished, which may never
// happen if the input ends without <END> and SynthesizeEnd is off.
// Cancelling ctx stops the input loop early but does not itself unblock
// the shutdown wait: WaitFinished and Fini take no timeouts.
func (p *Pipeline) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	sawSentinel, err := p.feedInput(ctx, in)
	if err != nil {
		return fmt.Errorf("pipeline: input processing failed: %w", err)
	}

	if !sawSentinel {
		if p.options.SynthesizeEnd {
			p.log.Infow("end of input without sentinel, synthesizing per --synthesize-end")
			if err := p.stages[0].PlaceWork(stage.Sentinel); err != nil {
				return fmt.Errorf("pipeline: synthesizing sentinel: %w", err)
			}
		} else {
			p.log.Warnw("end of input without sentinel; waiting for one that will never arrive")
		}
	}

	for _, s := range p.stages {
		s.WaitFinished()
	}
	for _, s := range p.stages {
		if err := s.Fini(); err != nil {
			p.log.Warnw("stage teardown reported an error", "stage", s.Name(), "error", err)
		}
	}

	if _, err := fmt.Fprintln(out, CompletionLine); err != nil {
		return fmt.Errorf("pipeline: writing completion line: %w", err)
	}
	p.log.Infow("pipeline shutdown complete")
	return nil
}
