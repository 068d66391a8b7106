package transform

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/outpostlabs/analyzer/stage"
)

func init() {
	Register("logger", func(log *zap.SugaredLogger) stage.Module {
		return stage.New("logger", newLogger(log), log)
	})
}

// newLogger returns a side-effecting transform that writes "[logger] <s>"
// to the shared stdout sink and passes s through unchanged. It also logs
// the line's on-screen display width at debug level as an operational
// diagnostic: it has no bearing on the forwarded value.
func newLogger(log *zap.SugaredLogger) stage.Transform {
	return func(s string) (stage.Result, error) {
		if err := Stdout.writeLine(fmt.Sprintf("[logger] %s", s)); err != nil {
			return stage.Result{}, fmt.Errorf("logger: write failed: %w", err)
		}
		if log != nil {
			log.Debugw("logger transform", "line", s, "display_width", runewidth.StringWidth(s))
		}
		return stage.Passthrough(s), nil
	}
}
