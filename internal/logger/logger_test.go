package logger

import (
	"path/filepath"
	"testing"

	"github.com/aleister1102/pagewatch/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultConfig(t *testing.T) {
	zl, err := New(config.NewDefaultLogConfig())

	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, zl.GetLevel())
}

func TestNew_FileLogging(t *testing.T) {
	cfg := config.NewDefaultLogConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "logs", "pagewatch.log")
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"

	zl, err := New(cfg)

	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, zl.GetLevel())
	zl.Debug().Msg("file writer smoke test")
}

func TestNew_InvalidLevelFallsBack(t *testing.T) {
	cfg := config.NewDefaultLogConfig()
	cfg.LogLevel = "chatty"

	zl, err := New(cfg)

	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, zl.GetLevel())
}

func TestLogLevelParser(t *testing.T) {
	parser := NewLogLevelParser()

	level, err := parser.ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)

	_, err = parser.ParseLevel("nope")
	assert.Error(t, err)
}

func TestLogFormatParser(t *testing.T) {
	parser := NewLogFormatParser()

	assert.Equal(t, FormatJSON, parser.ParseFormat("json"))
	assert.Equal(t, FormatText, parser.ParseFormat("TEXT"))
	assert.Equal(t, FormatConsole, parser.ParseFormat("anything-else"))
}

func TestBuilder_RejectsNonPositiveMaxSize(t *testing.T) {
	builder := NewLoggerBuilder()
	builder.config.MaxSizeMB = 0

	_, err := builder.Build()
	assert.Error(t, err)
}
