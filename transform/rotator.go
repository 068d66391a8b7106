package transform

import (
	"go.uber.org/zap"

	"github.com/outpostlabs/analyzer/stage"
)

func init() {
	Register("rotator", func(log *zap.SugaredLogger) stage.Module {
		return stage.New("rotator", rotate, log)
	})
}

// rotate moves the last rune of s to the front ("abc" -> "cab"). Runes,
// not bytes, are the unit of rotation so the transform stays correct on
// multi-byte UTF-8 input. The empty string passes through unchanged.
func rotate(s string) (stage.Result, error) {
	r := []rune(s)
	if len(r) == 0 {
		return stage.Passthrough(s), nil
	}
	last := r[len(r)-1]
	rotated := append([]rune{last}, r[:len(r)-1]...)
	return stage.Owned(string(rotated)), nil
}
