package trace

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestTracedPassesErrorThrough(t *testing.T) {
	buf := captureLog(t)
	SetLevel(LevelInfo)

	want := errors.New("boom")
	err := Traced("loadHistory", func() error { return want }, "AIR")
	require.ErrorIs(t, err, want)
	assert.Contains(t, buf.String(), "loadHistory(AIR) failed: boom")
}

func TestTracedValueReturnsValue(t *testing.T) {
	captureLog(t)
	SetLevel(LevelInfo)

	v, err := TracedValue("answer", func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestDebugGate(t *testing.T) {
	buf := captureLog(t)

	SetLevel(LevelInfo)
	Debugf("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	SetLevel(LevelDebug)
	Debugf("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarning, ParseLevel("Warning"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("garbage"))
}

func TestNonScalarArgsAreElided(t *testing.T) {
	buf := captureLog(t)
	SetLevel(LevelDebug)

	type opaque struct{ x int }
	_ = Traced("op", func() error { return nil }, "AIR", opaque{1})
	assert.Contains(t, buf.String(), "op(AIR, …)")
}
