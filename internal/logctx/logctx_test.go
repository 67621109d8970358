package logctx

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestFromContext_Fallbacks(t *testing.T) {
	// Nil context and logger-less context both fall back to the default.
	for _, ctx := range []context.Context{nil, context.Background()} {
		logger := FromContext(ctx)

		var buf bytes.Buffer
		logger = logger.Output(&buf)
		logger.Info().Msg("test")
		if buf.Len() == 0 {
			t.Error("expected fallback logger to produce output")
		}
	}
}

func TestWithLogger_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	custom := zerolog.New(&buf).With().Str("scene", "LC08_123045").Logger()

	ctx := WithLogger(context.Background(), custom)
	logger := FromContext(ctx)
	logger.Info().Msg("test")

	if !strings.Contains(buf.String(), `"scene":"LC08_123045"`) {
		t.Errorf("expected scene field in output, got: %s", buf.String())
	}
}

func TestWithStr_AddsField(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), zerolog.New(&buf))

	ctx = WithStr(ctx, "filename", "LC08_L2SP_123045_20200115_20200120_02_T1_SR_B4.TIF")
	logger := FromContext(ctx)
	logger.Info().Msg("test")

	if !strings.Contains(buf.String(), `"filename":"LC08_L2SP_123045_20200115_20200120_02_T1_SR_B4.TIF"`) {
		t.Errorf("expected filename field in output, got: %s", buf.String())
	}
}

func TestWithLogger_NilContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(nil, zerolog.New(&buf))

	logger := FromContext(ctx)
	logger.Info().Msg("test")
	if buf.Len() == 0 {
		t.Error("expected output from logger stored on nil context")
	}
}
