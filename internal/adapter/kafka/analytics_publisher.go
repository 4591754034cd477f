package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"

	"github.com/Monkachunkaa/tote-storage-api/internal/logging"
	"github.com/Monkachunkaa/tote-storage-api/internal/usecase"
)

// AnalyticsPublisher emits storefront events to a Kafka topic,
// fire-and-forget. A full producer buffer drops the event rather than
// blocking the payment path.
type AnalyticsPublisher struct {
	producer sarama.AsyncProducer
	topic    string
}

func NewAnalyticsPublisher(producer sarama.AsyncProducer, topic string) *AnalyticsPublisher {
	p := &AnalyticsPublisher{producer: producer, topic: topic}

	go func() {
		log := logging.New("kafka-analytics")
		for err := range producer.Errors() {
			log.Warn("analytics publish failed", "topic", err.Msg.Topic, "error", err.Err)
		}
	}()

	return p
}

func (p *AnalyticsPublisher) Publish(_ context.Context, ev usecase.AnalyticsEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		logging.New("kafka-analytics").Warn("analytics encode failed", "event", ev.Name, "error", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.Name),
		Value: sarama.ByteEncoder(body),
	}

	select {
	case p.producer.Input() <- msg:
	default:
		logging.New("kafka-analytics").Warn("analytics buffer full, event dropped", "event", ev.Name)
	}
}

func (p *AnalyticsPublisher) Close() error {
	return p.producer.Close()
}

var _ usecase.Analytics = (*AnalyticsPublisher)(nil)
