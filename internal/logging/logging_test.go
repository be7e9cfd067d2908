package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Str("path", "/api/state").Logger()

	ctx := WithLogger(context.Background(), logger)
	got := FromContext(ctx)
	got.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"path":"/api/state"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)

	buf.Reset()
	missing := FromContext(context.Background())
	missing.Info().Msg("dropped")
	assert.Empty(t, buf.String())
}

func TestLoggerMasksSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithConfig(LogConfig{Level: "info", Console: true, ConsoleOut: &buf})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	logger.Warn().Str("url", "https://x.test/v1?key=AIzaSyA1234567890abcdefghijklmnopqrstu").Msg("upstream failed")
	assert.Contains(t, buf.String(), "upstream failed")
	assert.NotContains(t, buf.String(), "AIzaSyA1234567890abcdefghijklmnopqrstu")
}
