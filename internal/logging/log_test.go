package logging_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/bountip-console/internal/logging"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter("upload", &buf)

	logger.Info().Str("file", "logo.png").Msg("file uploaded")

	out := buf.String()
	require.Contains(t, out, "UPLOAD")
	require.Contains(t, out, "file uploaded")
	require.Contains(t, out, "logo.png")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, logging.ParseLevel("debug"))
	require.Equal(t, zerolog.WarnLevel, logging.ParseLevel(" WARN "))
	require.Equal(t, zerolog.InfoLevel, logging.ParseLevel(""))
	require.Equal(t, zerolog.InfoLevel, logging.ParseLevel("loud"))
}
