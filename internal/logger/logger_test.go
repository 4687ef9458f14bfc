package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestNewDefaults tests that a nil config yields an info-level console logger
func TestNewDefaults(t *testing.T) {
	log, err := New(nil)
	require.NoError(t, err)

	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

// TestNewWithFile tests that the file core creates its directory and log file
func TestNewWithFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "casadns.log")

	log, err := New(&Config{Level: "debug", File: file})
	require.NoError(t, err)

	log.Info("startup")

	_, err = os.Stat(file)
	assert.NoError(t, err)
}

// TestNewInvalidLevel tests level validation
func TestNewInvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}
