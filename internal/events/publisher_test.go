package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkax "github.com/ariefcatur/go-pos-backend/internal/kafka"
)

type recordingSink struct {
	msgs []kafkago.Message
}

func (s *recordingSink) Publish(key, value []byte, headers ...kafkago.Header) {
	s.msgs = append(s.msgs, kafkago.Message{Key: key, Value: value, Headers: headers})
}

func TestKafkaPublisherWrapsEnvelope(t *testing.T) {
	sink := &recordingSink{}
	pub := NewKafkaPublisher(sink, "pos-api")
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")

	pub.Publish(ctx, EventLoyaltyPointsChanged, Key(42), LoyaltyPointsChanged{
		TransactionID: 42, CustomerID: 7, Action: ActionCreated, Delta: 50, CurrentPoints: 150,
	})

	require.Len(t, sink.msgs, 1)
	msg := sink.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, "x-event-type", msg.Headers[0].Key)
	assert.Equal(t, EventLoyaltyPointsChanged, string(msg.Headers[0].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "pos-api", env.Producer)
	assert.Equal(t, "req-1", env.TraceID)
	assert.Equal(t, "42", env.CorrelationID)

	p, err := kafkax.UnwrapPayload[LoyaltyPointsChanged](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, int64(150), p.CurrentPoints)
}
