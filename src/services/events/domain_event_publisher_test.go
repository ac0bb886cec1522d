package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gramgram/src/domain"
	"gramgram/src/infra/kafka"
	"gramgram/src/services/events"
	"gramgram/src/test_artefacts/comparer"
	"gramgram/src/test_artefacts/stubs"

	"github.com/google/uuid"
)

type fakeProducer struct {
	topic    string
	messages []kafka.Message
	err      error
}

func (p *fakeProducer) Producer(messages []kafka.Message, topic string) error {
	p.topic = topic
	p.messages = append(p.messages, messages...)
	return p.err
}

var _ = Describe("DomainEventPublisher", func() {
	var (
		producer  *fakeProducer
		publisher *events.DomainEventPublisher
		event     domain.LikeablePersonEvent
	)

	BeforeEach(func() {
		producer = &fakeProducer{}
		publisher = events.NewDomainEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)), producer, "likeable-person-events")

		event = domain.LikeablePersonEvent{
			EventType:      domain.EventLikeablePersonCreated,
			OccurredAt:     time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
			LikeablePerson: stubs.NewLikeablePersonStub().WithPendingTo("bob").Get(),
		}
	})

	It("publishes the event keyed by the target username", func() {
		// ACT
		err := publisher.PublishLikeablePersonEvent(context.Background(), event)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(producer.topic).To(Equal("likeable-person-events"))
		Expect(producer.messages).To(HaveLen(1))

		message := producer.messages[0]
		Expect(message.Key).To(Equal("bob"))

		expectedJSON, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.RawMessage(message.Value)).To(BeComparableTo(json.RawMessage(expectedJSON), comparer.JSONRawMessage()))
	})

	It("adds routing headers", func() {
		Expect(publisher.PublishLikeablePersonEvent(context.Background(), event)).To(Succeed())

		headers := producer.messages[0].Headers
		Expect(headers).To(HaveKeyWithValue("event_type", domain.EventLikeablePersonCreated))
		Expect(headers).To(HaveKeyWithValue("source_service", "likeable-person-api"))
		Expect(headers).To(HaveKeyWithValue("schema_version", "v1"))
		Expect(headers).To(HaveKeyWithValue("to_pending", "true"))
		Expect(headers).To(HaveKey("attractive_type_code"))

		_, err := uuid.Parse(headers["event_id"])
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns the producer failure", func() {
		producer.err = errors.New("kafka: client has run out of available brokers")

		err := publisher.PublishLikeablePersonEvent(context.Background(), event)

		Expect(err).To(MatchError(producer.err))
	})
})
