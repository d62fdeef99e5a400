package repository

import (
	"context"

	"FinSight/internal/domain/models"
	domainrepo "FinSight/internal/domain/repository"
	"FinSight/pkg/kafka"
	"FinSight/pkg/logger"
)

// KafkaAlertPublisher fans classified anomalies out to a Kafka topic,
// keyed by symbol so downstream consumers see per-asset ordering.
type KafkaAlertPublisher struct {
	producer *kafka.Producer
	topic    string
	log      *logger.Logger
}

// NewKafkaAlertPublisher creates a Kafka-backed alert publisher.
func NewKafkaAlertPublisher(producer *kafka.Producer, topic string, log *logger.Logger) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic, log: log}
}

// PublishAlert sends one anomaly alert.
func (p *KafkaAlertPublisher) PublishAlert(ctx context.Context, alert models.AnomalyAlert) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(alert.Symbol), alert); err != nil {
		p.log.Error("alert publish failed",
			logger.Error(err),
			logger.String("symbol", alert.Symbol))
		return err
	}
	return nil
}

// MultiAlertPublisher broadcasts an alert to several publishers. A failed
// sink does not stop the others.
type MultiAlertPublisher struct {
	sinks []domainrepo.AlertPublisher
}

// NewMultiAlertPublisher combines alert sinks.
func NewMultiAlertPublisher(sinks ...domainrepo.AlertPublisher) *MultiAlertPublisher {
	return &MultiAlertPublisher{sinks: sinks}
}

// PublishAlert delivers to every sink, returning the first error seen.
func (m *MultiAlertPublisher) PublishAlert(ctx context.Context, alert models.AnomalyAlert) error {
	var first error
	for _, s := range m.sinks {
		if err := s.PublishAlert(ctx, alert); err != nil && first == nil {
			first = err
		}
	}
	return first
}
