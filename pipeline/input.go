package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/outpostlabs/analyzer/stage"
)

// feedInput reads newline-terminated lines from in (stripping the
// terminator) and places each one onto the first stage's inbox, exactly
// as it was read: the sentinel is forwarded like any other line. It
// reports whether the sentinel was observed in-band, so Run can apply the
// EOF-without-sentinel policy.
//
// Scanning runs in its own goroutine: Scan blocks until the next read or
// error, and the caller still needs to be able to notice ctx cancellation
// without waiting on it.
func (p *Pipeline) feedInput(ctx context.Context, in io.Reader) (sawSentinel bool, err error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		// Deferred in this order so the scanErr send (which never blocks,
		// the channel is buffered) always completes before lines closes,
		// otherwise the consumer could observe a closed lines channel and
		// block forever reading an scanErr that was never sent.
		defer close(lines)
		var scanErrVal error
		defer func() { scanErr <- scanErrVal }()

		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, MaxLineBytes), MaxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		// I/O errors on input are treated as end of input, not a fatal
		// pipeline error; the caller logs and applies the EOF policy.
		scanErrVal = scanner.Err()
	}()

	first := p.stages[0]
	for {
		select {
		case <-ctx.Done():
			return sawSentinel, nil
		case line, ok := <-lines:
			if !ok {
				if ioErr := <-scanErr; ioErr != nil {
					p.log.Warnw("input scan ended with an error, treating as end of input", "error", ioErr)
				}
				return sawSentinel, nil
			}
			if err := first.PlaceWork(line); err != nil {
				return sawSentinel, fmt.Errorf("placing input line on first stage: %w", err)
			}
			if line == stage.Sentinel {
				sawSentinel = true
				return sawSentinel, nil
			}
		}
	}
}
