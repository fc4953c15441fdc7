package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/observability"
)

// PurchaseEnvelope событие покупки в том виде, в каком его пишет PurchasePublisher
type PurchaseEnvelope struct {
	EventID       string `json:"event_id"`
	EventType     string `json:"event_type"`
	EventVersion  int    `json:"event_version"`
	OccurredAt    string `json:"occurred_at"`
	BuyerID       int64  `json:"buyer_id"`
	Product       string `json:"product"`
	VariantID     string `json:"variant_id,omitempty"`
	TxID          string `json:"txid"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Amount        string `json:"amount,omitempty"`
	InvoiceURL    string `json:"invoice_url,omitempty"`
}

// DecodePurchaseEnvelope разбирает значение сообщения
func DecodePurchaseEnvelope(value []byte) (PurchaseEnvelope, error) {
	var env PurchaseEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return PurchaseEnvelope{}, fmt.Errorf("decode purchase event: %w", err)
	}
	if env.EventType == "" || env.TxID == "" {
		return PurchaseEnvelope{}, fmt.Errorf("decode purchase event: event_type and txid are required")
	}
	return env, nil
}

// messageReader: часть kafka.Reader, которая нужна consumer'у
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PurchaseHandler обрабатывает одно событие покупки
type PurchaseHandler func(ctx context.Context, e PurchaseEnvelope) error

// PurchaseConsumer читает события покупок из топика
type PurchaseConsumer struct {
	logger *zap.Logger
	reader messageReader
}

// NewPurchaseConsumer создаёт consumer в consumer group groupID
func NewPurchaseConsumer(logger *zap.Logger, brokers []string, groupID, topic string) *PurchaseConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return newPurchaseConsumer(logger, reader)
}

func newPurchaseConsumer(logger *zap.Logger, reader messageReader) *PurchaseConsumer {
	return &PurchaseConsumer{logger: logger, reader: reader}
}

// Close закрывает Kafka reader
func (c *PurchaseConsumer) Close() error {
	return c.reader.Close()
}

// Start читает сообщения до отмены ctx.
// At-least-once: offset коммитится после обработки. Нечитаемые сообщения
// логируются и коммитятся, ошибка handler'а оставляет offset на месте.
func (c *PurchaseConsumer) Start(ctx context.Context, handle PurchaseHandler) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer context cancelled, stopping")
				return nil
			}
			c.logger.Error("failed to fetch message from kafka", zap.Error(err))
			continue
		}

		if !c.processMessage(ctx, m, handle) {
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("failed to commit message offset",
				zap.Error(err),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
		}
	}
}

// processMessage возвращает true, если offset нужно закоммитить
func (c *PurchaseConsumer) processMessage(ctx context.Context, m kafka.Message, handle PurchaseHandler) bool {
	ctx = observability.ExtractKafka(ctx, &m)
	logger := observability.L(ctx, c.logger).With(
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	env, err := DecodePurchaseEnvelope(m.Value)
	if err != nil {
		logger.Error("skipping malformed purchase event", zap.Error(err))
		return true
	}

	if err := handle(ctx, env); err != nil {
		logger.Error("failed to handle purchase event",
			zap.Error(err),
			zap.String("event_id", env.EventID),
			zap.String("txid", env.TxID),
		)
		return false
	}
	return true
}
