package transform

import (
	"strings"

	"go.uber.org/zap"

	"github.com/outpostlabs/analyzer/stage"
)

func init() {
	Register("expander", func(log *zap.SugaredLogger) stage.Module {
		return stage.New("expander", expand, log)
	})
}

// expand joins the runes of s with a single space ("hi" -> "h i"). The
// empty string passes through unchanged rather than producing a single
// space.
func expand(s string) (stage.Result, error) {
	if s == "" {
		return stage.Passthrough(s), nil
	}
	runes := []rune(s)
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = string(r)
	}
	return stage.Owned(strings.Join(parts, " ")), nil
}
