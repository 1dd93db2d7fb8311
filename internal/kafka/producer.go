package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"eventboard/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

// Publish writes one message to the given topic.
func (p *Producer) Publish(topic, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

// PublishSubmission streams a submission lifecycle event to the given topic,
// keyed by submission ID.
func (p *Producer) PublishSubmission(topic string, submission models.EventSubmission) error {
	msgBytes, err := json.Marshal(submission)
	if err != nil {
		return err
	}
	return p.Publish(topic, submission.ID, msgBytes)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
