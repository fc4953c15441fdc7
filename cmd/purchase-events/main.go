// Command purchase-events: консольный просмотр событий покупок из Kafka.
//
// Читает топик KAFKA_PURCHASE_TOPIC в consumer group PURCHASE_EVENTS_GROUP
// (по умолчанию purchase-events-tail) и пишет каждое событие в лог.
// Брокеры берутся из KAFKA_BROKERS (например, "localhost:19092" или "kafka:9092").
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	eventkafka "github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/event/kafka"
	platformkafka "github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/kafka"
	platformlogging "github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/logging"
)

func main() {
	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "purchase-events",
		Env:         "local",
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      "console",
	})
	if err != nil {
		// Логгера нет, пишем в stderr напрямую
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer platformlogging.Sync(logger)

	cfg := platformkafka.DefaultConfig()
	if err := platformkafka.LoadEnv(&cfg); err != nil {
		logger.Error("failed to load kafka config", zap.Error(err))
		os.Exit(1)
	}

	groupID := os.Getenv("PURCHASE_EVENTS_GROUP")
	if groupID == "" {
		groupID = "purchase-events-tail"
	}

	logger.Info("kafka config loaded",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.PurchaseTopic),
		zap.String("group_id", groupID),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := eventkafka.NewPurchaseConsumer(logger, cfg.Brokers, groupID, cfg.PurchaseTopic)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("failed to close kafka reader", zap.Error(err))
		}
	}()

	err = consumer.Start(ctx, func(ctx context.Context, e eventkafka.PurchaseEnvelope) error {
		logger.Info("purchase event",
			zap.String("event_type", e.EventType),
			zap.String("event_id", e.EventID),
			zap.String("occurred_at", e.OccurredAt),
			zap.Int64("buyer_id", e.BuyerID),
			zap.String("product", e.Product),
			zap.String("txid", e.TxID),
			zap.String("payment_method", e.PaymentMethod),
			zap.String("amount", e.Amount),
		)
		return nil
	})
	if err != nil {
		logger.Error("consumer stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
