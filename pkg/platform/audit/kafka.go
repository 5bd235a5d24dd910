package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// kafkaPayload is the JSON structure published to the audit topic.
type kafkaPayload struct {
	Action     string `json:"action"`
	PassID     string `json:"pass_id,omitempty"`
	ScanID     string `json:"scan_id,omitempty"`
	GuardID    string `json:"guard_id,omitempty"`
	ResidentID string `json:"resident_id,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// KafkaSink produces audit events to a Kafka topic keyed by pass ID so all
// events for one pass land on the same partition, in order.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink builds a producer-only client. Returns nil when no brokers are
// configured so callers can wire the publisher unconditionally.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &KafkaSink{client: client, topic: topic}, nil
}

func (s *KafkaSink) Append(ctx context.Context, event Event) error {
	payload := kafkaPayload{
		Action:    string(event.Action),
		RequestID: event.RequestID,
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
	}
	if !event.PassID.IsNil() {
		payload.PassID = event.PassID.String()
	}
	if !event.ScanID.IsNil() {
		payload.ScanID = event.ScanID.String()
	}
	if !event.GuardID.IsNil() {
		payload.GuardID = event.GuardID.String()
	}
	if !event.ResidentID.IsNil() {
		payload.ResidentID = event.ResidentID.String()
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	record := &kgo.Record{
		Key:   []byte(payload.PassID),
		Value: value,
	}
	// Fire and forget: audit delivery is best effort by contract.
	s.client.Produce(ctx, record, nil)
	return nil
}

// Close flushes pending records and releases the client.
func (s *KafkaSink) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	if err := s.client.Flush(ctx); err != nil {
		return err
	}
	s.client.Close()
	return nil
}
