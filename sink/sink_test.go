package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagescope/pagescope/pkg/capability"
)

func TestLogSink_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	s := NewLogSink(logger)

	event := capability.Event{
		Capability: capability.Microphone,
		Action:     capability.ActionActiveUse,
		Context:    capability.MediaContext{Constraints: capability.ConstraintBasic},
		Detection:  "api-interception",
		Timestamp:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Deliver(context.Background(), event))
	require.NoError(t, s.Close())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "microphone", line["capability"])
	assert.Equal(t, "active-use", line["action"])
	assert.Equal(t, "api-interception", line["detection"])
	assert.Equal(t, "capability used", line["message"])
}
