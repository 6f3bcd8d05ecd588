package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestBuild_AttachesServiceAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := build(Config{Level: "debug", Output: &buf, Service: "unit"})
	l.Debug().Str(FieldEvent, "probe").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "unit", entry[FieldService])
	assert.Equal(t, "probe", entry[FieldEvent])
	assert.Equal(t, "debug", entry["level"])
}

func TestBuild_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := build(Config{Level: "shouting", Output: &buf})
	l.Debug().Msg("dropped")
	assert.Zero(t, buf.Len())

	l.Info().Msg("kept")
	assert.NotZero(t, buf.Len())
}

func TestReplace_CapturesAndRestores(t *testing.T) {
	var buf bytes.Buffer
	restore := Replace(zerolog.New(&buf))

	logger := FromContext(ContextWithRequestID(context.Background(), "req-7"))
	logger.Info().Msg("captured")
	restore()

	assert.Contains(t, buf.String(), `"request_id":"req-7"`)
	assert.Contains(t, buf.String(), "captured")

	buf.Reset()
	logger = Base()
	logger.Info().Msg("after restore")
	assert.Zero(t, buf.Len())
}
