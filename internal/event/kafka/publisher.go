package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/event"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/observability"
)

// messageWriter: часть kafka.Writer, которая нужна publisher'у
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PurchasePublisher реализует event.PurchasePublisher используя Kafka
type PurchasePublisher struct {
	logger *zap.Logger
	writer messageWriter
	topic  string
}

// NewPurchasePublisher создаёт Kafka publisher событий покупки
func NewPurchasePublisher(logger *zap.Logger, brokers []string, topic string) *PurchasePublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	return newPurchasePublisher(logger, writer, topic)
}

func newPurchasePublisher(logger *zap.Logger, writer messageWriter, topic string) *PurchasePublisher {
	return &PurchasePublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// Close закрывает Kafka writer
func (p *PurchasePublisher) Close() error {
	return p.writer.Close()
}

// PublishPurchaseCreated публикует событие создания checkout
func (p *PurchasePublisher) PublishPurchaseCreated(ctx context.Context, e event.PurchaseCreated) error {
	payload := map[string]interface{}{
		"event_id":       uuid.New().String(),
		"event_type":     event.TypePurchaseCreated,
		"event_version":  1,
		"occurred_at":    occurredAt(e.OccurredAt),
		"buyer_id":       e.BuyerID,
		"product":        e.ProductName,
		"variant_id":     e.VariantID,
		"txid":           e.TxID,
		"payment_method": e.PaymentMethod,
		"amount":         e.Amount,
		"invoice_url":    e.InvoiceURL,
	}
	return p.publish(ctx, event.TypePurchaseCreated, e.BuyerID, e.TxID, payload)
}

// PublishPurchaseCompleted публикует событие подтверждения оплаты
func (p *PurchasePublisher) PublishPurchaseCompleted(ctx context.Context, e event.PurchaseCompleted) error {
	payload := map[string]interface{}{
		"event_id":      uuid.New().String(),
		"event_type":    event.TypePurchaseCompleted,
		"event_version": 1,
		"occurred_at":   occurredAt(e.OccurredAt),
		"buyer_id":      e.BuyerID,
		"product":       e.ProductName,
		"txid":          e.TxID,
	}
	return p.publish(ctx, event.TypePurchaseCompleted, e.BuyerID, e.TxID, payload)
}

func (p *PurchasePublisher) publish(ctx context.Context, eventType string, buyerID int64, txid string, payload map[string]interface{}) error {
	valueBytes, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal purchase event",
			zap.Error(err),
			zap.String("event_type", eventType),
			zap.String("txid", txid),
		)
		return err
	}

	// Ключ: покупатель: события одного покупателя попадают в одну партицию по порядку
	message := kafka.Message{
		Key:   []byte(strconv.FormatInt(buyerID, 10)),
		Value: valueBytes,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	observability.InjectKafka(ctx, &message)

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		observability.L(ctx, p.logger).Error("failed to publish purchase event",
			zap.Error(err),
			zap.String("topic", p.topic),
			zap.String("event_type", eventType),
			zap.String("txid", txid),
		)
		return err
	}

	observability.L(ctx, p.logger).Info("purchase event published",
		zap.String("topic", p.topic),
		zap.String("event_type", eventType),
		zap.Int64("buyer_id", buyerID),
		zap.String("txid", txid),
	)
	return nil
}

func occurredAt(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}

// NoOpPurchasePublisher используется, когда Kafka выключена
type NoOpPurchasePublisher struct {
	logger *zap.Logger
}

// NewNoOpPurchasePublisher создаёт no-op publisher
func NewNoOpPurchasePublisher(logger *zap.Logger) *NoOpPurchasePublisher {
	return &NoOpPurchasePublisher{logger: logger}
}

// PublishPurchaseCreated только логирует
func (p *NoOpPurchasePublisher) PublishPurchaseCreated(ctx context.Context, e event.PurchaseCreated) error {
	p.logger.Debug("no-op publisher: purchase created event skipped", zap.String("txid", e.TxID))
	return nil
}

// PublishPurchaseCompleted только логирует
func (p *NoOpPurchasePublisher) PublishPurchaseCompleted(ctx context.Context, e event.PurchaseCompleted) error {
	p.logger.Debug("no-op publisher: purchase completed event skipped", zap.String("txid", e.TxID))
	return nil
}
