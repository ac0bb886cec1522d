package kafka

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gramgram/src/infra/metrics"

	"github.com/IBM/sarama"
)

const (
	batchTimeout       = 2 * time.Second
	consumeRetryDelay  = 5 * time.Second
	retryBackoff       = 500 * time.Millisecond
	maxEventBytes      = 256 * 1024
	producerRetryLimit = 5
)

// KafkaClient junta um consumer group (opcional) e um producer síncrono.
// Sem groupID o client só produz, que é o caso da API.
type KafkaClient struct {
	consumer  sarama.ConsumerGroup
	producer  sarama.SyncProducer
	batchSize int
}

type Message struct {
	Key      string
	Value    []byte
	Headers  map[string]string
	internal *sarama.ConsumerMessage
}

// Handler recebe um lote; erro faz o lote inteiro ser reentregue.
type Handler func(messages []Message) error

func NewKafkaClient(brokers string, groupID string, batchSize int) (*KafkaClient, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("kafka batch size must be positive, got %d", batchSize)
	}

	brokerList := strings.Split(brokers, ",")
	config := newConfig(batchSize)

	var consumer sarama.ConsumerGroup
	if groupID != "" {
		var err error
		consumer, err = sarama.NewConsumerGroup(brokerList, groupID, config)
		if err != nil {
			return nil, fmt.Errorf("failed to create consumer group %s: %w", groupID, err)
		}
	}

	producer, err := sarama.NewSyncProducer(brokerList, config)
	if err != nil {
		if consumer != nil {
			consumer.Close()
		}
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	log.Printf("Kafka client initialized (brokers: %s, group: %q, batch size: %d)", brokers, groupID, batchSize)

	return &KafkaClient{
		consumer:  consumer,
		producer:  producer,
		batchSize: batchSize,
	}, nil
}

func newConfig(batchSize int) *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0
	config.ClientID = "gramgram"

	// Verificações de handle são raras e não podem se perder: grupo novo lê desde o início.
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}
	config.Consumer.Group.Session.Timeout = 30 * time.Second
	config.Consumer.Group.Heartbeat.Interval = 10 * time.Second
	config.Consumer.MaxProcessingTime = 60 * time.Second
	config.Consumer.MaxWaitTime = 250 * time.Millisecond
	config.ChannelBufferSize = batchSize * 2

	// Um evento por requisição: latência importa mais que throughput.
	// Idempotente para o retry não duplicar eventos na partição do alvo.
	config.Producer.Idempotent = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Net.MaxOpenRequests = 1
	config.Producer.Retry.Max = producerRetryLimit
	config.Producer.Retry.Backoff = 100 * time.Millisecond
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = maxEventBytes
	config.Producer.Partitioner = sarama.NewHashPartitioner

	return config
}

func (k *KafkaClient) Consumer(ctx context.Context, handler Handler, topic string) error {
	if k.consumer == nil {
		return fmt.Errorf("kafka client was created without a consumer group")
	}

	groupHandler := &consumerGroupHandler{
		handler:   handler,
		batchSize: k.batchSize,
		topic:     topic,
	}

	for {
		if err := k.consumer.Consume(ctx, []string{topic}, groupHandler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			log.Printf("Error consuming from topic %s: %v", topic, err)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(consumeRetryDelay):
			}
			continue
		}

		// Consume retorna a cada rebalance; só sai quando o ctx acaba.
		if ctx.Err() != nil {
			log.Println("Kafka consumer context cancelled")
			return nil
		}
	}
}

// Producer envia o lote numa única chamada; a ordem por chave é mantida
// porque cada chave cai sempre na mesma partição.
func (k *KafkaClient) Producer(messages []Message, topic string) error {
	if len(messages) == 0 {
		return nil
	}

	producerMessages := make([]*sarama.ProducerMessage, len(messages))
	for i, msg := range messages {
		producerMessages[i] = &sarama.ProducerMessage{
			Topic:   topic,
			Key:     sarama.StringEncoder(msg.Key),
			Value:   sarama.ByteEncoder(msg.Value),
			Headers: toRecordHeaders(msg.Headers),
		}
	}

	if err := k.producer.SendMessages(producerMessages); err != nil {
		var producerErrors sarama.ProducerErrors
		if errors.As(err, &producerErrors) {
			return fmt.Errorf("failed to send %d/%d messages to topic %s: %w", len(producerErrors), len(messages), topic, producerErrors[0].Err)
		}
		return fmt.Errorf("failed to send messages to topic %s: %w", topic, err)
	}

	return nil
}

func (k *KafkaClient) Close() error {
	var errs []error

	if k.consumer != nil {
		if err := k.consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close consumer: %w", err))
		}
	}

	if err := k.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close producer: %w", err))
	}

	return errors.Join(errs...)
}

// consumerGroupHandler implementa sarama.ConsumerGroupHandler acumulando
// mensagens por partição até batchSize ou batchTimeout.
type consumerGroupHandler struct {
	handler   Handler
	batchSize int
	topic     string
}

func (h *consumerGroupHandler) Setup(session sarama.ConsumerGroupSession) error {
	log.Printf("Kafka session started for %s (member: %s, generation: %d)", h.topic, session.MemberID(), session.GenerationID())
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	pending := make([]Message, 0, h.batchSize)
	timer := time.NewTimer(batchTimeout)
	defer timer.Stop()

	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				h.deliver(session, pending)
				return nil
			}

			pending = append(pending, fromConsumerMessage(message))
			if len(pending) < h.batchSize {
				continue
			}

			if !h.deliver(session, pending) {
				return nil
			}
			pending = pending[:0]
			timer.Reset(batchTimeout)

		case <-timer.C:
			if !h.deliver(session, pending) {
				return nil
			}
			pending = pending[:0]
			timer.Reset(batchTimeout)

		case <-session.Context().Done():
			return nil
		}
	}
}

// deliver repete o lote até o handler aceitar; offsets só são marcados depois disso.
// Retorna false quando a sessão acaba antes (o lote volta no próximo dono da partição).
func (h *consumerGroupHandler) deliver(session sarama.ConsumerGroupSession, messages []Message) bool {
	if len(messages) == 0 {
		return true
	}

	backoff := retryBackoff
	for {
		err := h.handler(messages)
		if err == nil {
			break
		}

		metrics.ConsumedBatches.WithLabelValues(h.topic, "error").Inc()
		log.Printf("Handler failed for batch of %d messages from %s, retrying in %v: %v", len(messages), h.topic, backoff, err)

		select {
		case <-session.Context().Done():
			return false
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, consumeRetryDelay)
	}

	for _, msg := range messages {
		if msg.internal != nil {
			session.MarkMessage(msg.internal, "")
		}
	}
	metrics.ConsumedBatches.WithLabelValues(h.topic, "ok").Inc()

	return true
}

func fromConsumerMessage(message *sarama.ConsumerMessage) Message {
	headers := make(map[string]string, len(message.Headers))
	for _, header := range message.Headers {
		if header != nil {
			headers[string(header.Key)] = string(header.Value)
		}
	}

	return Message{
		Key:      string(message.Key),
		Value:    message.Value,
		Headers:  headers,
		internal: message,
	}
}

func toRecordHeaders(headers map[string]string) []sarama.RecordHeader {
	if len(headers) == 0 {
		return nil
	}

	records := make([]sarama.RecordHeader, 0, len(headers))
	for name, value := range headers {
		records = append(records, sarama.RecordHeader{Key: []byte(name), Value: []byte(value)})
	}
	return records
}
