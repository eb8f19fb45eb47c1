package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	e, err := decodeEvent("events.CHAT_ANSWERED", []byte(`{"type":"CHAT_ANSWERED","data":{"latency_ms":812},"occurred_at":"2024-05-01T10:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "CHAT_ANSWERED", e.EventType())
	assert.Equal(t, float64(812), e.Payload()["latency_ms"])

	e, err = decodeEvent("events.CHAT_ANSWERED", []byte(`{"data":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "CHAT_ANSWERED", e.EventType())

	_, err = decodeEvent("events.X", []byte(`nope`))
	assert.Error(t, err)
}
