package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	SetOutput(buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetVerbose(false)
	})
	return buf
}

func TestSetVerbose(t *testing.T) {
	buf := capture(t)

	Debug("hidden %d", 1)
	assert.Empty(t, buf.String())
	assert.False(t, IsVerbose())

	SetVerbose(true)
	Debug("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
	assert.True(t, IsVerbose())
}

func TestWarnIsAlwaysEmitted(t *testing.T) {
	buf := capture(t)

	Warn("default connection %q not found", "ghost")

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), `default connection \"ghost\" not found`)
}

func TestEnableFile(t *testing.T) {
	buf := capture(t)
	path := filepath.Join(t.TempDir(), "logs", "logsh.log")

	require.NoError(t, EnableFile(path))
	Error("written to both")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to both")
	assert.Contains(t, buf.String(), "written to both")
}
