package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomStdLoggerWritesOnClose(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig(&buf)
	cfg.AsyncWrite = false

	log, err := NewCustomStdLogger(cfg)
	require.NoError(t, err)

	log.Warn("AB Test configuration not found", "experiments", 0)
	require.NoError(t, log.Close())

	assert.Contains(t, buf.String(), "AB Test configuration not found")
}
