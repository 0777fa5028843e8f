package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/config"
)

func TestNewFallsBackToInfo(t *testing.T) {
	l, c := New(config.LogConfig{Level: "loud"})
	defer c.Close()
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l, c := New(config.LogConfig{Level: "debug", File: path, MaxSizeMB: 1, MaxBackups: 1})
	l.Debug().Str("k", "v").Msg("hello")
	require.NoError(t, c.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"message":"hello"`)
	assert.Contains(t, string(b), `"k":"v"`)
}
