package transform

import (
	"time"

	"go.uber.org/zap"

	"github.com/outpostlabs/analyzer/stage"
)

// typewriterDelay paces each rune written by the typewriter transform. It
// is a package var, not a const, so tests can zero it out instead of
// paying real wall-clock time per character.
var typewriterDelay = 8 * time.Millisecond

func init() {
	Register("typewriter", func(log *zap.SugaredLogger) stage.Module {
		return stage.New("typewriter", newTypewriter(log), log)
	})
}

// newTypewriter returns a side-effecting transform that writes s to the
// shared stdout sink one rune at a time with a small delay between each,
// then passes s through unchanged.
func newTypewriter(log *zap.SugaredLogger) stage.Transform {
	return func(s string) (stage.Result, error) {
		for _, r := range s {
			if err := Stdout.write([]byte(string(r))); err != nil {
				return stage.Result{}, err
			}
			if typewriterDelay > 0 {
				time.Sleep(typewriterDelay)
			}
		}
		if err := Stdout.write([]byte("\n")); err != nil {
			return stage.Result{}, err
		}
		return stage.Passthrough(s), nil
	}
}
