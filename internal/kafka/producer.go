package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers      []string
	Topic        string
	BatchSize    int           // default 100
	BatchTimeout time.Duration // default 200ms
	Async        bool
	// OnError is called with failed async deliveries.
	OnError func(msgs []Message, err error)
}

// Producer is a thin wrapper around segmentio/kafka-go Writer.
type Producer struct {
	w *kafka.Writer
}

func NewProducerFromConfig(c Config) *Producer {
	bs := c.BatchSize
	if bs <= 0 {
		bs = 100
	}
	bt := c.BatchTimeout
	if bt <= 0 {
		bt = 200 * time.Millisecond
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        c.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    bs,
		BatchTimeout: bt,
		RequiredAcks: kafka.RequireOne,
		Async:        c.Async,
	}
	if c.OnError != nil {
		onErr := c.OnError
		w.Completion = func(msgs []kafka.Message, err error) {
			if err != nil {
				onErr(msgs, err)
			}
		}
	}

	return &Producer{w: w}
}

type Message = kafka.Message

func (p *Producer) WriteMessages(ctx context.Context, msgs ...Message) error {
	return p.w.WriteMessages(ctx, msgs...)
}

func (p *Producer) Close() error { return p.w.Close() }
