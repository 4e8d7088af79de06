package appkafka

import (
	"fmt"

	"example.com/tweetfeed/internal/models"
	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

// Publisher sends domain events to Kafka. A nil Publisher, or one without a
// writer, drops events silently so the API runs without a broker.
type Publisher struct {
	writer KafkaWriter
}

func NewPublisher(w KafkaWriter) *Publisher {
	return &Publisher{writer: w}
}

// Publish writes one event keyed by its type.
func (p *Publisher) Publish(ev models.Event) error {
	if p == nil || p.writer == nil {
		return nil
	}

	data, err := EncodeEvent(ev)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(kafka.Message{
		Key:   []byte(ev.Type),
		Value: data,
	})
}

func EncodeEvent(ev models.Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return data, nil
}

func DecodeEvent(data []byte) (models.Event, error) {
	var ev models.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return models.Event{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Type == "" {
		return models.Event{}, fmt.Errorf("decode event: missing type")
	}
	return ev, nil
}
