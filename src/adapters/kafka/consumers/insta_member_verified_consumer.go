package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gramgram/src/domain"
	"gramgram/src/infra/debezium"
	"gramgram/src/infra/kafka"
)

// PendingTargetLinker é implementado pelo LikeablePersonService.
type PendingTargetLinker interface {
	LinkPendingTargets(ctx context.Context, event domain.InstaMemberVerifiedEvent) (int, error)
}

// InstaMemberVerifiedConsumer recebe os eventos de handle verificado e faz o
// backfill do to_insta_member_id das declarações pendentes.
type InstaMemberVerifiedConsumer struct {
	logger *slog.Logger
	linker PendingTargetLinker
	cdc    *debezium.CDCSerializer
}

func NewInstaMemberVerifiedConsumer(
	logger *slog.Logger,
	linker PendingTargetLinker,
) *InstaMemberVerifiedConsumer {
	return &InstaMemberVerifiedConsumer{
		logger: logger,
		linker: linker,
	}
}

// WithDebeziumSerializer troca o formato de entrada: em vez do evento JSON do
// subsistema de verificação, lê o CDC da tabela insta_members.
func (c *InstaMemberVerifiedConsumer) WithDebeziumSerializer(serializer *debezium.CDCSerializer) *InstaMemberVerifiedConsumer {
	c.cdc = serializer
	return c
}

func (c *InstaMemberVerifiedConsumer) Start(ctx context.Context, kafkaClient *kafka.KafkaClient, topic string) error {
	c.logger.Info("Starting insta member verified consumer", "topic", topic)

	handler := func(messages []kafka.Message) error {
		return c.HandleMessages(ctx, messages)
	}

	return kafkaClient.Consumer(ctx, handler, topic)
}

// HandleMessages descarta mensagens malformadas (com log) e devolve erro só
// quando o armazenamento falha, para o lote ser reprocessado.
func (c *InstaMemberVerifiedConsumer) HandleMessages(ctx context.Context, messages []kafka.Message) error {
	if len(messages) == 0 {
		return nil
	}

	c.logger.Debug("Processing messages batch", "count", len(messages))

	// O último evento de cada username vence dentro do lote.
	latest := make(map[string]domain.InstaMemberVerifiedEvent)
	order := make([]string, 0, len(messages))

	for _, msg := range messages {
		event, ok, err := c.decode(msg.Value)
		if err != nil {
			c.logger.Error("Failed to unmarshal message",
				"error", err,
				"key", msg.Key,
				"value", string(msg.Value))
			continue
		}
		if !ok {
			continue
		}

		// Mesma normalização do LinkPendingTargets, para " bob" e "bob" colapsarem.
		event.Username = strings.TrimSpace(event.Username)
		if event.ID <= 0 || event.Username == "" {
			c.logger.Warn("Skipping message with missing fields",
				"key", msg.Key,
				"id", event.ID,
				"username", event.Username)
			continue
		}

		if _, exists := latest[event.Username]; !exists {
			order = append(order, event.Username)
		}
		latest[event.Username] = event
	}

	linkedTotal := 0
	for _, username := range order {
		linked, err := c.linker.LinkPendingTargets(ctx, latest[username])
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				c.logger.Warn("Skipping invalid verified event", "username", username, "error", err)
				continue
			}
			c.logger.Error("Failed to link pending targets",
				"error", err,
				"username", username)
			return fmt.Errorf("failed to link pending targets for %s: %w", username, err)
		}
		linkedTotal += linked
	}

	c.logger.Info("Successfully processed messages batch",
		"count", len(messages),
		"verifiedCount", len(order),
		"linkedCount", linkedTotal)

	return nil
}

// decode devolve ok=false para mensagens CDC que não interessam (delete ou outra tabela).
func (c *InstaMemberVerifiedConsumer) decode(value []byte) (domain.InstaMemberVerifiedEvent, bool, error) {
	var event domain.InstaMemberVerifiedEvent

	if c.cdc == nil {
		if err := json.Unmarshal(value, &event); err != nil {
			return event, false, err
		}
		return event, true, nil
	}

	cdcEvent, err := c.cdc.ParseCDCEvent(value)
	if err != nil {
		return event, false, err
	}

	if !c.cdc.IsTableMonitored(cdcEvent.Source.Table) || !cdcEvent.IsUpsert() {
		c.logger.Debug("Skipping CDC event",
			"table", cdcEvent.Source.Table,
			"operation", cdcEvent.Operation)
		return event, false, nil
	}

	row := cdcEvent.After
	if event.ID, err = row.Int64("id"); err != nil {
		return event, false, err
	}
	if event.MemberID, err = row.Int64("member_id"); err != nil {
		return event, false, err
	}
	if event.Username, err = row.String("username"); err != nil {
		return event, false, err
	}
	if event.Gender, err = row.String("gender"); err != nil {
		return event, false, err
	}
	if event.Likes, err = row.Int64("likes"); err != nil {
		return event, false, err
	}

	return event, true, nil
}
