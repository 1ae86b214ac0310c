package eventpkg

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	payload := map[string]any{"transfer_id": 7, "amount": "200.00"}

	msg, err := newMessage(TransferCompleted, "7", payload, now)
	require.NoError(t, err)
	require.Equal(t, []byte("7"), msg.Key)
	require.Equal(t, now, msg.Time)
	require.Len(t, msg.Headers, 1)
	require.Equal(t, TransferCompleted, string(msg.Headers[0].Value))

	var got struct {
		Type       string         `json:"type"`
		OccurredAt time.Time      `json:"occurred_at"`
		Payload    map[string]any `json:"payload"`
	}

	require.NoError(t, json.Unmarshal(msg.Value, &got))
	require.Equal(t, TransferCompleted, got.Type)
	require.True(t, now.Equal(got.OccurredAt))
	require.Equal(t, "200.00", got.Payload["amount"])
}

func TestNewMessageUnsupportedPayload(t *testing.T) {
	t.Parallel()

	_, err := newMessage(TransferCompleted, "1", make(chan int), time.Now())
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Parallel()

	require.IsType(t, LogPublisher{}, New(nil, "transfer_completed"))
	require.NoError(t, New(nil, "transfer_completed").Publish(context.Background(), TransferCompleted, "1", nil))

	p := New([]string{"localhost:9092"}, "transfer_completed")
	require.IsType(t, &KafkaPublisher{}, p)
	require.NoError(t, p.(*KafkaPublisher).Close())
}
