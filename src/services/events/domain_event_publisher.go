package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"gramgram/src/domain"
	"gramgram/src/infra/kafka"
	"gramgram/src/infra/metrics"

	"github.com/google/uuid"
)

// Producer é o lado de produção do KafkaClient.
type Producer interface {
	Producer(messages []kafka.Message, topic string) error
}

type DomainEventPublisher struct {
	logger   *slog.Logger
	producer Producer
	topic    string
}

func NewDomainEventPublisher(
	logger *slog.Logger,
	producer Producer,
	topic string,
) *DomainEventPublisher {
	return &DomainEventPublisher{
		logger:   logger,
		producer: producer,
		topic:    topic,
	}
}

// PublishLikeablePersonEvent publica o evento particionado pelo username alvo,
// mantendo a ordem dos eventos de um mesmo alvo.
func (p *DomainEventPublisher) PublishLikeablePersonEvent(ctx context.Context, event domain.LikeablePersonEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		metrics.PublishedEvents.WithLabelValues(event.EventType, "error").Inc()
		return fmt.Errorf("failed to marshal %s event: %w", event.EventType, err)
	}

	eventID := uuid.NewString()
	message := kafka.Message{
		Key:     event.LikeablePerson.ToInstaMemberUsername,
		Value:   eventBytes,
		Headers: p.createEventHeaders(eventID, event),
	}

	if err := p.producer.Producer([]kafka.Message{message}, p.topic); err != nil {
		metrics.PublishedEvents.WithLabelValues(event.EventType, "error").Inc()
		return fmt.Errorf("failed to publish %s event to topic %s: %w", event.EventType, p.topic, err)
	}

	metrics.PublishedEvents.WithLabelValues(event.EventType, "ok").Inc()
	p.logger.Debug("Published likeable person event",
		"event_id", eventID,
		"event_type", event.EventType,
		"likeable_person_id", event.LikeablePerson.ID,
		"topic", p.topic)

	return nil
}

// createEventHeaders permite filtrar eventos sem desserializar o payload.
func (p *DomainEventPublisher) createEventHeaders(eventID string, event domain.LikeablePersonEvent) map[string]string {
	headers := map[string]string{
		"event_type":           event.EventType,
		"event_id":             eventID,
		"source_service":       "likeable-person-api",
		"schema_version":       "v1",
		"attractive_type_code": strconv.Itoa(int(event.LikeablePerson.AttractiveTypeCode)),
	}

	if event.LikeablePerson.ToInstaMemberID == nil {
		headers["to_pending"] = "true"
	}

	return headers
}
