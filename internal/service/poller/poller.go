// Package poller следит за неподтверждёнными транзакциями: по одной
// отменяемой горутине на txid, пока шлюз не подтвердит оплату.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/event"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/telegram"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/templates"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/observability"
)

// DefaultInterval пауза между проверками одной транзакции
const DefaultInterval = 60 * time.Second

var tracer = otel.Tracer("poller")

// ConfirmationChecker: часть шлюза, которая нужна поллеру
type ConfirmationChecker interface {
	IsTransactionConfirmed(ctx context.Context, txid string) (bool, error)
}

// Job одна отслеживаемая покупка. Уведомление уходит в личный чат покупателя.
type Job struct {
	BuyerID     int64
	ProductName string
	TxID        string
}

// Config параметры поллера
type Config struct {
	Interval time.Duration
	// MaxAttempts ограничивает число обращений к шлюзу; 0: без ограничения
	MaxAttempts int
}

// Poller запускает и отменяет задачи проверки подтверждения
type Poller struct {
	logger    *zap.Logger
	repo      repository.TransactionRepository
	checker   ConfirmationChecker
	sender    telegram.Sender
	renderer  *templates.Renderer
	publisher event.PurchasePublisher
	sleeper   Sleeper
	metrics   *pollMetrics

	interval    time.Duration
	maxAttempts int

	mu      sync.Mutex
	tasks   map[string]context.CancelFunc
	wg      sync.WaitGroup
	root    context.Context
	stop    context.CancelFunc
	stopped bool
}

// New создаёт поллер с DefaultSleeper
func New(
	logger *zap.Logger,
	repo repository.TransactionRepository,
	checker ConfirmationChecker,
	sender telegram.Sender,
	renderer *templates.Renderer,
	publisher event.PurchasePublisher,
	cfg Config,
) *Poller {
	return NewWithSleeper(logger, repo, checker, sender, renderer, publisher, DefaultSleeper{}, cfg)
}

// NewWithSleeper создаёт поллер с заданным Sleeper (для тестов)
func NewWithSleeper(
	logger *zap.Logger,
	repo repository.TransactionRepository,
	checker ConfirmationChecker,
	sender telegram.Sender,
	renderer *templates.Renderer,
	publisher event.PurchasePublisher,
	sleeper Sleeper,
	cfg Config,
) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 0 {
		maxAttempts = 0
	}

	root, stop := context.WithCancel(context.Background())
	return &Poller{
		logger:      logger,
		repo:        repo,
		checker:     checker,
		sender:      sender,
		renderer:    renderer,
		publisher:   publisher,
		sleeper:     sleeper,
		metrics:     newPollMetrics(),
		interval:    interval,
		maxAttempts: maxAttempts,
		tasks:       make(map[string]context.CancelFunc),
		root:        root,
		stop:        stop,
	}
}

// Start запускает задачу для txid. Возвращает false, если задача для этого
// txid уже идёт, txid пуст или поллер остановлен.
func (p *Poller) Start(job Job) bool {
	if job.TxID == "" {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return false
	}
	if _, ok := p.tasks[job.TxID]; ok {
		p.logger.Debug("poll task already running", zap.String("txid", job.TxID))
		return false
	}

	ctx, cancel := context.WithCancel(p.root)
	p.tasks[job.TxID] = cancel
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()
		defer p.finish(job.TxID)
		p.run(ctx, job)
	}()

	p.logger.Info("poll task started",
		zap.String("txid", job.TxID),
		zap.Int64("buyer_id", job.BuyerID),
		zap.Duration("interval", p.interval),
		zap.Int("max_attempts", p.maxAttempts),
	)
	return true
}

// Cancel останавливает задачу txid; false, если такой задачи нет
func (p *Poller) Cancel(txid string) bool {
	p.mu.Lock()
	cancel, ok := p.tasks[txid]
	p.mu.Unlock()

	if ok {
		cancel()
		p.logger.Info("poll task cancelled", zap.String("txid", txid))
	}
	return ok
}

// Active число идущих задач
func (p *Poller) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tasks)
}

// Resume перезапускает задачи для всех pending записей (после рестарта процесса)
func (p *Poller) Resume(ctx context.Context) (int, error) {
	records, err := p.repo.ListByStatus(ctx, repository.StatusPending)
	if err != nil {
		return 0, err
	}

	started := 0
	for _, rec := range records {
		if p.Start(Job{BuyerID: rec.BuyerID, ProductName: rec.ProductName, TxID: rec.TxID}) {
			started++
		}
	}

	p.logger.Info("pending transactions resumed",
		zap.Int("pending", len(records)),
		zap.Int("started", started),
	)
	return started, nil
}

// Stop отменяет все задачи и ждёт их завершения или отмены ctx.
// После Stop новые задачи не запускаются.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	p.stop()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) finish(txid string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cancel, ok := p.tasks[txid]; ok {
		cancel()
		delete(p.tasks, txid)
	}
}

// run цикл одной задачи: прочитать запись, спросить шлюз, подождать
func (p *Poller) run(ctx context.Context, job Job) {
	logger := p.logger.With(zap.String("txid", job.TxID), zap.Int64("buyer_id", job.BuyerID))
	started := time.Now()

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			logger.Debug("poll task stopped", zap.Int("attempts", attempt-1))
			return
		}

		if p.checkOnce(ctx, logger, job, started) {
			return
		}

		if p.maxAttempts > 0 && attempt >= p.maxAttempts {
			p.metrics.recordCheck(ctx, resultExhausted)
			logger.Warn("poll attempts exhausted, giving up",
				zap.Int("attempts", attempt),
			)
			return
		}

		if err := p.sleeper.Sleep(ctx, p.interval); err != nil {
			logger.Debug("poll task stopped while waiting", zap.Int("attempts", attempt))
			return
		}
	}
}

// checkOnce одна итерация; true: задача завершена (оплачено, уже completed или записи нет)
func (p *Poller) checkOnce(ctx context.Context, logger *zap.Logger, job Job, started time.Time) bool {
	ctx, span := tracer.Start(ctx, "poller.check")
	span.SetAttributes(attribute.String("txid", job.TxID))
	defer span.End()

	logger = observability.L(ctx, logger)

	rec, err := p.repo.Get(ctx, job.TxID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// Без записи нечего переводить в completed
		logger.Warn("transaction record not found, stopping poll task")
		return true
	case err != nil:
		if ctx.Err() != nil {
			return true
		}
		logger.Error("failed to read transaction record", zap.Error(err))
		span.RecordError(err)
		return false
	case rec.Status == repository.StatusCompleted:
		logger.Debug("transaction already completed")
		return true
	}

	confirmed, err := p.checker.IsTransactionConfirmed(ctx, job.TxID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		logger.Warn("failed to check transaction status", zap.Error(err))
		p.metrics.recordCheck(ctx, resultError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "gateway check failed")
		return false
	}
	if !confirmed {
		logger.Debug("transaction not confirmed yet")
		p.metrics.recordCheck(ctx, resultPending)
		return false
	}

	changed, err := p.repo.UpdateStatus(ctx, job.TxID, repository.StatusCompleted)
	if err != nil {
		logger.Error("failed to mark transaction completed", zap.Error(err))
		span.RecordError(err)
		return false
	}
	if !changed {
		// Запись уже перевела другая задача или процесс: покупатель уведомлён там
		logger.Debug("transaction completed elsewhere, skipping notification")
		return true
	}

	logger.Info("transaction confirmed", zap.String("product", job.ProductName))
	p.metrics.recordCheck(ctx, resultConfirmed)
	p.metrics.recordWait(ctx, time.Since(started))
	span.SetAttributes(attribute.Bool("confirmed", true))

	if err := p.publisher.PublishPurchaseCompleted(ctx, event.PurchaseCompleted{
		BuyerID:     job.BuyerID,
		ProductName: job.ProductName,
		TxID:        job.TxID,
		OccurredAt:  time.Now().UTC(),
	}); err != nil {
		logger.Warn("failed to publish purchase completed event", zap.Error(err))
	}

	text := p.renderer.MustRender(templates.PaymentConfirmed,
		map[string]string{"Product": job.ProductName},
		"Payment confirmed! Thank you for your purchase.")
	if err := p.sender.SendMessage(ctx, job.BuyerID, telegram.Reply{Text: text}); err != nil {
		// TransportError: логируем, не повторяем
		logger.Error("failed to notify buyer about confirmed payment", zap.Error(err))
	}
	return true
}
