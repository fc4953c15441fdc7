package poller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	gatewayMocks "github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/client/sellauth/mocks"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/event"
	eventMocks "github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/event/mocks"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository/memory"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/telegram"
	telegramMocks "github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/telegram/mocks"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/templates"
)

// countingSleeper не ждёт реального времени, только считает вызовы
type countingSleeper struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return ctx.Err()
}

func (s *countingSleeper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fixture struct {
	repo      *memory.TransactionRepository
	gateway   *gatewayMocks.Gateway
	sender    *telegramMocks.Sender
	publisher *eventMocks.PurchasePublisher
	sleeper   *countingSleeper
	poller    *Poller
}

func newFixture(t *testing.T, cfg Config, sleeper Sleeper) *fixture {
	t.Helper()
	renderer, err := templates.NewRenderer(zap.NewNop(), "")
	require.NoError(t, err)

	f := &fixture{
		repo:      memory.NewTransactionRepository(),
		gateway:   gatewayMocks.NewGateway(t),
		sender:    telegramMocks.NewSender(t),
		publisher: eventMocks.NewPurchasePublisher(t),
	}
	if sleeper == nil {
		f.sleeper = &countingSleeper{}
		sleeper = f.sleeper
	}
	f.poller = NewWithSleeper(zap.NewNop(), f.repo, f.gateway, f.sender, renderer, f.publisher, sleeper, cfg)
	t.Cleanup(func() { _ = f.poller.Stop(context.Background()) })
	return f
}

func (f *fixture) seed(t *testing.T, txid string, status repository.Status) {
	t.Helper()
	require.NoError(t, f.repo.Upsert(context.Background(), repository.TransactionRecord{
		BuyerID: 7, ProductName: "Key", TxID: txid, Currency: "BTC", Status: status,
	}))
}

func waitIdle(t *testing.T, p *Poller) {
	t.Helper()
	require.Eventually(t, func() bool { return p.Active() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func confirmedReply(r telegram.Reply) bool {
	return strings.Contains(r.Text, "Payment for Key confirmed")
}

func TestPoller_ConfirmsAfterSeveralAttempts(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.seed(t, "tx-1", repository.StatusPending)

	f.gateway.On("IsTransactionConfirmed", mock.Anything, "tx-1").Return(false, nil).Twice()
	f.gateway.On("IsTransactionConfirmed", mock.Anything, "tx-1").Return(true, nil).Once()
	f.publisher.On("PublishPurchaseCompleted", mock.Anything, mock.MatchedBy(func(e event.PurchaseCompleted) bool {
		return e.TxID == "tx-1" && e.BuyerID == 7 && e.ProductName == "Key"
	})).Return(nil).Once()
	f.sender.On("SendMessage", mock.Anything, int64(7), mock.MatchedBy(confirmedReply)).Return(nil).Once()

	require.True(t, f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-1"}))
	waitIdle(t, f.poller)

	rec, err := f.repo.Get(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, repository.StatusCompleted, rec.Status)
	assert.Equal(t, 2, f.sleeper.Calls())
}

func TestPoller_AlreadyCompletedDoesNothing(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.seed(t, "tx-done", repository.StatusCompleted)

	require.True(t, f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-done"}))
	waitIdle(t, f.poller)

	f.gateway.AssertNotCalled(t, "IsTransactionConfirmed", mock.Anything, mock.Anything)
	f.sender.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	assert.Zero(t, f.sleeper.Calls())
}

func TestPoller_SecondRunAfterCompletionDoesNotNotifyAgain(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.seed(t, "tx-2", repository.StatusPending)

	f.gateway.On("IsTransactionConfirmed", mock.Anything, "tx-2").Return(true, nil).Once()
	f.publisher.On("PublishPurchaseCompleted", mock.Anything, mock.Anything).Return(nil).Once()
	f.sender.On("SendMessage", mock.Anything, int64(7), mock.Anything).Return(nil).Once()

	require.True(t, f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-2"}))
	waitIdle(t, f.poller)

	// Повторный запуск видит completed и сразу выходит
	require.True(t, f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-2"}))
	waitIdle(t, f.poller)
}

func TestPoller_CompletedConcurrentlyDoesNotNotify(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.seed(t, "tx-race", repository.StatusPending)

	// Пока шлюз отвечает, запись переводит другой процесс
	f.gateway.On("IsTransactionConfirmed", mock.Anything, "tx-race").
		Run(func(args mock.Arguments) {
			changed, err := f.repo.UpdateStatus(context.Background(), "tx-race", repository.StatusCompleted)
			require.NoError(t, err)
			require.True(t, changed)
		}).
		Return(true, nil).Once()

	require.True(t, f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-race"}))
	waitIdle(t, f.poller)

	f.publisher.AssertNotCalled(t, "PublishPurchaseCompleted", mock.Anything, mock.Anything)
	f.sender.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	assert.Zero(t, f.sleeper.Calls())
}

func TestPoller_GatewayErrorKeepsPolling(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.seed(t, "tx-3", repository.StatusPending)

	f.gateway.On("IsTransactionConfirmed", mock.Anything, "tx-3").Return(false, errors.New("502")).Once()
	f.gateway.On("IsTransactionConfirmed", mock.Anything, "tx-3").Return(true, nil).Once()
	f.publisher.On("PublishPurchaseCompleted", mock.Anything, mock.Anything).Return(nil).Once()
	f.sender.On("SendMessage", mock.Anything, int64(7), mock.Anything).Return(nil).Once()

	f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-3"})
	waitIdle(t, f.poller)

	rec, err := f.repo.Get(context.Background(), "tx-3")
	require.NoError(t, err)
	assert.Equal(t, repository.StatusCompleted, rec.Status)
}

func TestPoller_TransportAndPublishErrorsDoNotBreakCompletion(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.seed(t, "tx-4", repository.StatusPending)

	f.gateway.On("IsTransactionConfirmed", mock.Anything, "tx-4").Return(true, nil).Once()
	f.publisher.On("PublishPurchaseCompleted", mock.Anything, mock.Anything).Return(errors.New("kafka down")).Once()
	f.sender.On("SendMessage", mock.Anything, int64(7), mock.Anything).Return(telegram.ErrTransport).Once()

	f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-4"})
	waitIdle(t, f.poller)

	rec, err := f.repo.Get(context.Background(), "tx-4")
	require.NoError(t, err)
	assert.Equal(t, repository.StatusCompleted, rec.Status)
}

func TestPoller_MaxAttempts(t *testing.T) {
	f := newFixture(t, Config{MaxAttempts: 3}, nil)
	f.seed(t, "tx-5", repository.StatusPending)

	f.gateway.On("IsTransactionConfirmed", mock.Anything, "tx-5").Return(false, nil).Times(3)

	f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-5"})
	waitIdle(t, f.poller)

	rec, err := f.repo.Get(context.Background(), "tx-5")
	require.NoError(t, err)
	assert.Equal(t, repository.StatusPending, rec.Status)
	assert.Equal(t, 2, f.sleeper.Calls())
}

func TestPoller_MissingRecordStops(t *testing.T) {
	f := newFixture(t, Config{}, nil)

	f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-ghost"})
	waitIdle(t, f.poller)

	f.gateway.AssertNotCalled(t, "IsTransactionConfirmed", mock.Anything, mock.Anything)
}

func TestPoller_StartRejectsDuplicatesAndEmptyTxID(t *testing.T) {
	f := newFixture(t, Config{Interval: time.Hour}, DefaultSleeper{})
	f.seed(t, "tx-6", repository.StatusPending)
	f.gateway.On("IsTransactionConfirmed", mock.Anything, "tx-6").Return(false, nil).Maybe()

	assert.False(t, f.poller.Start(Job{BuyerID: 7}))
	assert.True(t, f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-6"}))
	assert.False(t, f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-6"}))
	assert.Equal(t, 1, f.poller.Active())
}

func TestPoller_Cancel(t *testing.T) {
	f := newFixture(t, Config{Interval: time.Hour}, DefaultSleeper{})
	f.seed(t, "tx-7", repository.StatusPending)
	f.gateway.On("IsTransactionConfirmed", mock.Anything, "tx-7").Return(false, nil).Maybe()

	require.True(t, f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-7"}))
	assert.True(t, f.poller.Cancel("tx-7"))
	waitIdle(t, f.poller)
	assert.False(t, f.poller.Cancel("tx-7"))

	rec, err := f.repo.Get(context.Background(), "tx-7")
	require.NoError(t, err)
	assert.Equal(t, repository.StatusPending, rec.Status)
}

func TestPoller_Stop(t *testing.T) {
	f := newFixture(t, Config{Interval: time.Hour}, DefaultSleeper{})
	f.seed(t, "tx-8", repository.StatusPending)
	f.seed(t, "tx-9", repository.StatusPending)
	f.gateway.On("IsTransactionConfirmed", mock.Anything, mock.Anything).Return(false, nil).Maybe()

	f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-8"})
	f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-9"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.poller.Stop(ctx))
	assert.Zero(t, f.poller.Active())

	assert.False(t, f.poller.Start(Job{BuyerID: 7, ProductName: "Key", TxID: "tx-10"}))
}

func TestPoller_Resume(t *testing.T) {
	f := newFixture(t, Config{Interval: time.Hour}, DefaultSleeper{})
	f.seed(t, "tx-a", repository.StatusPending)
	f.seed(t, "tx-b", repository.StatusPending)
	f.seed(t, "tx-c", repository.StatusCompleted)
	f.gateway.On("IsTransactionConfirmed", mock.Anything, mock.Anything).Return(false, nil).Maybe()

	started, err := f.poller.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, started)
	assert.Equal(t, 2, f.poller.Active())

	// Повторный Resume не плодит дубликаты
	started, err = f.poller.Resume(context.Background())
	require.NoError(t, err)
	assert.Zero(t, started)
}

func TestDefaultSleeper(t *testing.T) {
	s := DefaultSleeper{}
	assert.NoError(t, s.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Sleep(ctx, time.Hour), context.Canceled)
}
