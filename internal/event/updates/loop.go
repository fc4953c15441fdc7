// Package updates содержит единственный цикл потребления входящих событий Telegram.
// Источник событий либо long polling (getUpdates), либо webhook, который
// кладёт апдейты в очередь цикла.
package updates

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/service/shop"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/telegram"
)

const (
	// DefaultPollTimeout таймаут long polling getUpdates
	DefaultPollTimeout = 30 * time.Second
	// DefaultRetryDelay пауза после ошибки getUpdates
	DefaultRetryDelay = 3 * time.Second
	// DefaultQueueSize размер очереди webhook апдейтов
	DefaultQueueSize = 100
)

// ErrStopped возвращается Enqueue после остановки цикла
var ErrStopped = errors.New("update loop stopped")

var tracer = otel.Tracer("updates")

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Handler --dir=. --output=./mocks --outpkg=mocks

// Handler обрабатывает события диалога (shop.Engine)
type Handler interface {
	HandleCommand(ctx context.Context, ev shop.CommandEvent) error
	HandleButton(ctx context.Context, ev shop.ButtonEvent) error
	HandleText(ctx context.Context, ev shop.TextEvent) error
}

// Config параметры цикла
type Config struct {
	PollTimeout time.Duration
	RetryDelay  time.Duration
	QueueSize   int
}

// Loop доставляет апдейты в Handler по одному, в порядке получения
type Loop struct {
	logger  *zap.Logger
	handler Handler
	cfg     Config

	queue chan telegram.Update
	done  chan struct{}
}

// NewLoop создаёт цикл; нулевые поля cfg заменяются дефолтами
func NewLoop(logger *zap.Logger, handler Handler, cfg Config) *Loop {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	return &Loop{
		logger:  logger,
		handler: handler,
		cfg:     cfg,
		queue:   make(chan telegram.Update, cfg.QueueSize),
		done:    make(chan struct{}),
	}
}

// Poll забирает апдейты через getUpdates и обрабатывает их, пока ctx не отменён.
// Offset сдвигается после каждого апдейта, поэтому Telegram не присылает его повторно.
func (l *Loop) Poll(ctx context.Context, updater telegram.Updater) error {
	l.logger.Info("starting telegram long polling", zap.Duration("timeout", l.cfg.PollTimeout))

	var offset int64
	for {
		batch, err := updater.GetUpdates(ctx, offset, l.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("long polling context cancelled, stopping")
				return nil
			}
			l.logger.Error("failed to get updates", zap.Error(err), zap.Int64("offset", offset))
			if !sleep(ctx, l.cfg.RetryDelay) {
				return nil
			}
			continue
		}

		for _, u := range batch {
			l.Dispatch(ctx, u)
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
		}
	}
}

// Enqueue кладёт апдейт из webhook в очередь цикла Run
func (l *Loop) Enqueue(ctx context.Context, u telegram.Update) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}

	select {
	case l.queue <- u:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run обрабатывает апдейты из очереди, пока ctx не отменён.
// После выхода Enqueue возвращает ErrStopped.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("starting webhook update loop", zap.Int("queue_size", l.cfg.QueueSize))
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("update loop context cancelled, stopping", zap.Int("dropped", len(l.queue)))
			return nil
		case u := <-l.queue:
			l.Dispatch(ctx, u)
		}
	}
}

// Dispatch переводит апдейт в событие диалога и вызывает Handler.
// Ошибки Handler только логируются: покупатель уже получил сообщение о сбое.
func (l *Loop) Dispatch(ctx context.Context, u telegram.Update) {
	correlationID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "updates.Dispatch", trace.WithAttributes(
		attribute.Int64("update_id", u.UpdateID),
		attribute.String("correlation_id", correlationID),
	))
	defer span.End()

	logger := l.logger.With(
		zap.Int64("update_id", u.UpdateID),
		zap.String("correlation_id", correlationID),
	)

	var err error
	switch ev := Convert(u).(type) {
	case shop.CommandEvent:
		logger.Debug("command received", zap.Int64("buyer_id", ev.BuyerID), zap.String("command", ev.Command))
		err = l.handler.HandleCommand(ctx, ev)
	case shop.ButtonEvent:
		logger.Debug("button pressed", zap.Int64("buyer_id", ev.BuyerID), zap.String("data", ev.Data))
		err = l.handler.HandleButton(ctx, ev)
	case shop.TextEvent:
		logger.Debug("text received", zap.Int64("buyer_id", ev.BuyerID))
		err = l.handler.HandleText(ctx, ev)
	default:
		logger.Debug("update ignored")
		return
	}

	if err != nil {
		span.RecordError(err)
		logger.Error("failed to handle update", zap.Error(err))
	}
}

// Convert возвращает shop.CommandEvent, shop.ButtonEvent, shop.TextEvent
// или nil, если апдейт боту не интересен
func Convert(u telegram.Update) any {
	if cq := u.CallbackQuery; cq != nil {
		ev := shop.ButtonEvent{
			BuyerID:    cq.From.ID,
			ChatID:     cq.From.ID,
			CallbackID: cq.ID,
			Data:       cq.Data,
		}
		if cq.Message != nil {
			ev.ChatID = cq.Message.Chat.ID
			ev.MessageID = cq.Message.MessageID
		}
		return ev
	}

	m := u.Message
	if m == nil || m.From == nil || m.From.IsBot || strings.TrimSpace(m.Text) == "" {
		return nil
	}

	if strings.HasPrefix(m.Text, "/") {
		return shop.CommandEvent{BuyerID: m.From.ID, ChatID: m.Chat.ID, Command: ParseCommand(m.Text)}
	}
	return shop.TextEvent{BuyerID: m.From.ID, ChatID: m.Chat.ID, Text: m.Text}
}

// ParseCommand "/Start@ShopBot arg" -> "/start"
func ParseCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(cmd)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
