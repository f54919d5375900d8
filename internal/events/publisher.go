package events

import (
	"context"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-pos-backend/internal/kafka"
)

// Publisher emits one event; key is the partition key.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any)
}

// Sink is the transport; *kafka.Producer implements it.
type Sink interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type KafkaPublisher struct {
	Sink     Sink
	Producer string
}

func NewKafkaPublisher(sink Sink, producer string) *KafkaPublisher {
	return &KafkaPublisher{Sink: sink, Producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.Producer,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: key,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Sink.Publish([]byte(key), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) {}

func Key(id int64) string { return strconv.FormatInt(id, 10) }
