package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_DoesNotPanic(t *testing.T) {
	// JSON mode (default)
	Init(false, false)
	log := L()
	log.Info().Msg("json info")
	log.Debug().Msg("json debug (should not appear at info level)")

	// Debug mode
	Init(true, false)
	log = L()
	log.Debug().Msg("json debug (should appear)")

	// Human-friendly mode
	Init(false, true)
	log = L()
	log.Info().Msg("human info")

	// Debug + human
	Init(true, true)
	log = L()
	log.Debug().Msg("human debug")
}

func TestWithPhase(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	log := WithPhase("metadata")
	log.Info().Str("dir", "dataset/original").Msg("scanned dataset")

	if buf.Len() == 0 {
		t.Fatal("expected log output, got empty string")
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"phase":"metadata"`)) {
		t.Errorf("expected phase field in output, got: %s", buf.String())
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	customLogger := zerolog.New(&buf).With().Str("scene", "LC08_123045").Logger()
	SetLogger(customLogger)

	L().Info().Msg("clip started")

	if !bytes.Contains(buf.Bytes(), []byte(`"scene":"LC08_123045"`)) {
		t.Errorf("expected scene field in output, got: %s", buf.String())
	}

	// Reset to default for other tests
	Init(false, false)
}
