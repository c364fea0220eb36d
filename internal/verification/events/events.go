// Package events announces recorded verification attempts to downstream
// consumers such as report generation.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const TypeAttemptRecorded = "verification.attempt_recorded"

// AttemptRecorded is published after an attempt is stored. Outcome is the
// classification at publish time; consumers needing the current rules
// re-read the attempt.
type AttemptRecorded struct {
	Type        string    `json:"type"`
	AttemptID   string    `json:"attempt_id"`
	CandidateID string    `json:"candidate_id"`
	OrgID       string    `json:"org_id,omitempty"`
	Method      string    `json:"method"`
	Provider    string    `json:"provider,omitempty"`
	Outcome     string    `json:"outcome"`
	StatusCode  int       `json:"status_code"`
	Reason      string    `json:"reason"`
	RequestID   string    `json:"request_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishAttemptRecorded(ctx context.Context, e AttemptRecorded) error
}

// Producer is the subset of *kgo.Client the publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaPublisher writes events keyed by candidate, so one candidate's events
// stay ordered within a partition.
type KafkaPublisher struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

type Option func(*KafkaPublisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *KafkaPublisher) {
		p.logger = logger
	}
}

func NewKafkaPublisher(producer Producer, topic string, opts ...Option) *KafkaPublisher {
	p := &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewKafkaClient builds a producer client for brokers.
func NewKafkaClient(brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

func (p *KafkaPublisher) PublishAttemptRecorded(ctx context.Context, e AttemptRecorded) error {
	if e.Type == "" {
		e.Type = TypeAttemptRecorded
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Type, err)
	}
	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.CandidateID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(e.Type)},
		},
		Timestamp: e.OccurredAt,
	}
	if err := p.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	p.logger.DebugContext(ctx, "event published",
		"type", e.Type,
		"attempt_id", e.AttemptID,
		"candidate_id", e.CandidateID,
	)
	return nil
}

// NoopPublisher drops events; used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishAttemptRecorded(context.Context, AttemptRecorded) error {
	return nil
}
