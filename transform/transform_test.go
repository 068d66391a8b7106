package transform

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKnowsAllSixBuiltins(t *testing.T) {
	want := []string{"expander", "flipper", "logger", "rotator", "typewriter", "uppercaser"}
	assert.Equal(t, want, Names())
	for _, name := range want {
		assert.True(t, IsRegistered(name))
	}
}

func TestNewUnknownStageFails(t *testing.T) {
	_, err := New("no-such-stage", nil)
	require.ErrorIs(t, err, ErrUnknownStage)
}

func TestNewReturnsIndependentInstances(t *testing.T) {
	a, err := New("uppercaser", nil)
	require.NoError(t, err)
	b, err := New("uppercaser", nil)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestUppercase(t *testing.T) {
	r, err := uppercase("Test")
	require.NoError(t, err)
	assert.False(t, r.Dropped())
	assert.Equal(t, "TEST", r.Value())
}

func TestRotate(t *testing.T) {
	cases := map[string]string{
		"":    "",
		"a":   "a",
		"abc": "cab",
	}
	for in, want := range cases {
		r, err := rotate(in)
		require.NoError(t, err)
		assert.Equal(t, want, r.Value())
	}
}

func TestExpand(t *testing.T) {
	r, err := expand("hi")
	require.NoError(t, err)
	assert.Equal(t, "h i", r.Value())

	r, err = expand("")
	require.NoError(t, err)
	assert.True(t, r.Dropped() == false)
	assert.Equal(t, "", r.Value())
}

func TestFlip(t *testing.T) {
	r, err := flip("hello")
	require.NoError(t, err)
	assert.Equal(t, "olleh", r.Value())

	r, err = flip("")
	require.NoError(t, err)
	assert.Equal(t, "", r.Value())
}

func TestLoggerWritesPrefixedLineAndPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	tr := newLogger(nil)
	r, err := tr("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", r.Value())
	assert.Equal(t, "[logger] hello\n", buf.String())
}

func TestTypewriterWritesEveryRuneAndPassesThrough(t *testing.T) {
	prev := typewriterDelay
	typewriterDelay = 0
	defer func() { typewriterDelay = prev }()

	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	tr := newTypewriter(nil)
	r, err := tr("hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", r.Value())
	assert.Equal(t, "hi\n", buf.String())
}
