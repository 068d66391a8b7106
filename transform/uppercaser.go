package transform

import (
	"strings"

	"go.uber.org/zap"

	"github.com/outpostlabs/analyzer/stage"
)

func init() {
	Register("uppercaser", func(log *zap.SugaredLogger) stage.Module {
		return stage.New("uppercaser", uppercase, log)
	})
}

// uppercase is a pure transform: upper-cases the input and returns a newly
// computed value.
func uppercase(s string) (stage.Result, error) {
	return stage.Owned(strings.ToUpper(s)), nil
}
