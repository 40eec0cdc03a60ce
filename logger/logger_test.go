package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/rs/zerolog"
)

func TestFromContextDefaultsToNop(t *testing.T) {
	log := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), NewJSON(&buf, zerolog.DebugLevel))

	log := FromContext(ctx)
	log.Debug().Str("file", "bills.txt").Msg("processing")

	assert.Contains(t, buf.String(), `"file":"bills.txt"`)
	assert.Contains(t, buf.String(), `"message":"processing"`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf, zerolog.WarnLevel)

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestConsoleWriter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.InfoLevel)
	log.Info().Int("documents", 2).Msg("checked")

	assert.Contains(t, buf.String(), "checked")
	assert.Contains(t, buf.String(), "documents=")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	assert.NoError(t, err)
	assert.Equal(t, DefaultLevel, level)

	level, err = ParseLevel(" DEBUG ")
	assert.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	_, err = ParseLevel("loud")
	assert.EqualError(t, err, `invalid log level "loud"`)
}
