package transform

import (
	"go.uber.org/zap"

	"github.com/outpostlabs/analyzer/stage"
)

func init() {
	Register("flipper", func(log *zap.SugaredLogger) stage.Module {
		return stage.New("flipper", flip, log)
	})
}

// flip reverses s by Unicode code point ("hello" -> "olleh"), not by byte:
// a naive byte reversal would corrupt multi-byte UTF-8 sequences. Combining
// marks and grapheme clusters spanning multiple runes are not reassembled;
// this is documented behavior, not a bug.
func flip(s string) (stage.Result, error) {
	if s == "" {
		return stage.Passthrough(s), nil
	}

	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return stage.Owned(string(r)), nil
}
