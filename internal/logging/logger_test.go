package logging_test

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/rangeserve/internal/logging"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(&buf, "warn")
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.Warn("short stream", "path", "/clip.mp4", "written", 10)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "short stream")
	assert.Contains(t, out, "rangeserve")
	assert.Contains(t, out, "written=10")
}

func TestNew_DefaultLevel(t *testing.T) {
	logger, err := logging.New(&bytes.Buffer{}, "")
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
}

func TestNew_BadLevel(t *testing.T) {
	_, err := logging.New(&bytes.Buffer{}, "loud")
	assert.Error(t, err)
}
