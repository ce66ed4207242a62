package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/primerdw/bartender-api/internal/kafka"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON, keyed by resource.
type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(p *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{w: p}
}

func (k *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Resource),
		Value: payload,
	})
}

func (k *KafkaPublisher) Close() error { return k.w.Close() }
