package logger

import (
	"os"
	"path/filepath"
	"testing"

	"alarm_gateway/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitWritesToFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.LogFile = filepath.Join(t.TempDir(), "gateway.log")
	cfg.Logging.LogToConsole = false
	cfg.Logging.LogLevel = WARN

	prev := base
	t.Cleanup(func() { SetLogger(prev) })

	require.NoError(t, Init(cfg))
	Printf("not written at warn level")
	Warnf("fumo acima do limite: %d", 400)
	require.NoError(t, Close())

	data, err := os.ReadFile(cfg.Logging.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fumo acima do limite: 400")
	assert.NotContains(t, string(data), "not written")
}

func TestHelpersUseLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := base
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	Debugf("debug %d", 1)
	Printf("info %s\n", "line")
	Warnf("warn")
	Errorf("error")
	LogResult("connect", false, "timeout")

	entries := logs.AllUntimed()
	require.Len(t, entries, 5)
	assert.Equal(t, "debug 1", entries[0].Message)
	assert.Equal(t, "info line", entries[1].Message)
	assert.Equal(t, zap.WarnLevel, entries[2].Level)
	assert.Equal(t, zap.ErrorLevel, entries[3].Level)
	assert.Equal(t, "connect: FAILED - timeout", entries[4].Message)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zap.InfoLevel, parseLevel("verbose"))
	assert.Equal(t, zap.ErrorLevel, parseLevel(ERROR))
}
