package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type captureWriter struct{ msgs []kafka.Message }

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestNewClient(t *testing.T) {
	require.False(t, NewClient("").Enabled())
	require.False(t, NewClient(" , ").Enabled())

	c := NewClient("k1:9092, k2:9092,")
	require.True(t, c.Enabled())
	require.Equal(t, []string{"k1:9092", "k2:9092"}, c.Brokers)
}

func TestPublishRaw(t *testing.T) {
	w := &captureWriter{}
	err := PublishRaw(context.Background(), w, "42", []byte(`{"id":42}`))
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	require.Equal(t, "42", string(w.msgs[0].Key))

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	require.EqualValues(t, 42, got["id"])
	require.False(t, w.msgs[0].Time.IsZero())
}
