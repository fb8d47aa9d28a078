package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		Logger().SetLevel(log.InfoLevel)
	})

	require.NoError(t, SetLevel("warn"))
	Info("hidden")
	Warn("shown", "face", 3)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "face=3")

	buf.Reset()
	require.NoError(t, SetLevel("debug"))
	With("run", "abc").Debug("detail")
	assert.Contains(t, buf.String(), "run=abc")
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	assert.Error(t, SetLevel("chatty"))
}

func TestLoggerIsShared(t *testing.T) {
	assert.Same(t, Logger(), Logger())
}
