package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpostlabs/analyzer/transform"
)

func runPipeline(t *testing.T, names []string, in string) string {
	t.Helper()

	var out bytes.Buffer
	restore := transform.SetOutput(&out)
	defer restore()

	p, err := New(Options{QueueSize: 4, StageNames: names}, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- p.Run(context.Background(), strings.NewReader(in), &out)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not shut down in time")
	}

	return out.String()
}

func TestScenarioLogger(t *testing.T) {
	out := runPipeline(t, []string{"logger"}, "hello\n<END>\n")
	assert.Contains(t, out, "[logger] hello")
	assert.Contains(t, out, CompletionLine)
}

func TestScenarioUppercaserLogger(t *testing.T) {
	out := runPipeline(t, []string{"uppercaser", "logger"}, "test\n<END>\n")
	assert.Contains(t, out, "[logger] TEST")
}

func TestScenarioRotatorLogger(t *testing.T) {
	out := runPipeline(t, []string{"rotator", "logger"}, "abc\n<END>\n")
	assert.Contains(t, out, "[logger] cab")
}

func TestScenarioFlipperLogger(t *testing.T) {
	out := runPipeline(t, []string{"flipper", "logger"}, "hello\n<END>\n")
	assert.Contains(t, out, "[logger] olleh")
}

func TestScenarioExpanderLogger(t *testing.T) {
	out := runPipeline(t, []string{"expander", "logger"}, "hi\n<END>\n")
	assert.Contains(t, out, "[logger] h i")
}

func TestScenarioDoubleRotatorLogger(t *testing.T) {
	out := runPipeline(t, []string{"rotator", "rotator", "logger"}, "abc\n<END>\n")
	assert.Contains(t, out, "[logger] bca")
}

func TestEmptyLineForwardedAsEmptyString(t *testing.T) {
	out := runPipeline(t, []string{"logger"}, "\n<END>\n")
	assert.Contains(t, out, "[logger] \n")
}

func TestNewRejectsUnknownStage(t *testing.T) {
	_, err := New(Options{QueueSize: 4, StageNames: []string{"no-such-stage"}}, nil)
	require.Error(t, err)
}

func TestNewRejectsInvalidQueueSize(t *testing.T) {
	_, err := New(Options{QueueSize: 0, StageNames: []string{"logger"}}, nil)
	require.Error(t, err)

	_, err = New(Options{QueueSize: MaxQueueSize + 1, StageNames: []string{"logger"}}, nil)
	require.Error(t, err)
}

func TestNewRollsBackOnLaterStageFailure(t *testing.T) {
	// "logger" resolves and initializes fine; the second name does not
	// resolve at all, so New must tear down the already-initialized
	// "logger" stage before returning.
	_, err := New(Options{QueueSize: 4, StageNames: []string{"logger", "does-not-exist"}}, nil)
	require.Error(t, err)
}

func TestEOFWithoutSentinelDoesNotSynthesizeByDefault(t *testing.T) {
	var out bytes.Buffer
	restore := transform.SetOutput(&out)
	defer restore()

	p, err := New(Options{QueueSize: 4, StageNames: []string{"logger"}}, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- p.Run(context.Background(), strings.NewReader("hello\n"), &out)
	}()

	select {
	case <-done:
		t.Fatal("Run must not complete without a sentinel when SynthesizeEnd is off")
	case <-time.After(200 * time.Millisecond):
	}

	for _, s := range p.stages {
		_ = s.Fini()
	}
}

func TestEOFWithoutSentinelSynthesizesWhenOptedIn(t *testing.T) {
	var out bytes.Buffer
	restore := transform.SetOutput(&out)
	defer restore()

	p, err := New(Options{QueueSize: 4, StageNames: []string{"logger"}, SynthesizeEnd: true}, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- p.Run(context.Background(), strings.NewReader("hello\n"), &out)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not complete after synthesizing the sentinel")
	}

	assert.Contains(t, out.String(), CompletionLine)
}
