package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvelope_Event(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	e := Envelope{Type: "CHAT_ANSWERED", Data: map[string]interface{}{"status": "answered"}, OccurredAt: at}.Event()

	assert.Equal(t, "CHAT_ANSWERED", e.EventType())
	assert.Equal(t, "answered", e.Payload()["status"])
	assert.Equal(t, at, e.Timestamp())
}
