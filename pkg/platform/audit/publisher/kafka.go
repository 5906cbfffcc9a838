package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "recouvro/pkg/platform/audit"
)

// KafkaSink forwards audit events to a Kafka topic, keyed by dossier id so
// all events for one case land on the same partition in order.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink connects to the brokers and ensures the topic exists.
func NewKafkaSink(ctx context.Context, brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka sink requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka sink requires a topic")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	topics, err := adm.ListTopics(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("list kafka topics: %w", err)
	}
	if !topics.Has(topic) {
		if _, err := adm.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
			client.Close()
			return nil, fmt.Errorf("create kafka topic %s: %w", topic, err)
		}
	}

	return &KafkaSink{client: client, topic: topic}, nil
}

// Publish produces one event synchronously. The publisher treats sink errors
// as best-effort, but waiting for the ack here keeps delivery observable.
func (s *KafkaSink) Publish(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.DossierID.String()),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and releases the underlying client.
func (s *KafkaSink) Close() {
	s.client.Close()
}
