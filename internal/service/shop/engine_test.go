package shop

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/client/sellauth"
	gatewayMocks "github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/client/sellauth/mocks"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/event"
	eventMocks "github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/event/mocks"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository/memory"
	repoMocks "github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository/mocks"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/service/poller"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/service/shop/mocks"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/telegram"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/templates"
)

const (
	buyer int64 = 7
	chat  int64 = 70
)

// sentMessage одно исходящее сообщение (send или edit)
type sentMessage struct {
	ChatID    int64
	MessageID int64
	Reply     telegram.Reply
}

// recordingSender запоминает исходящие сообщения
type recordingSender struct {
	mu       sync.Mutex
	messages []sentMessage
	answered []string
	editErr  error
}

func (s *recordingSender) SendMessage(ctx context.Context, chatID int64, reply telegram.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, sentMessage{ChatID: chatID, Reply: reply})
	return nil
}

func (s *recordingSender) EditMessage(ctx context.Context, chatID, messageID int64, reply telegram.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editErr != nil {
		return s.editErr
	}
	s.messages = append(s.messages, sentMessage{ChatID: chatID, MessageID: messageID, Reply: reply})
	return nil
}

func (s *recordingSender) AnswerCallback(ctx context.Context, callbackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answered = append(s.answered, callbackID)
	return nil
}

func (s *recordingSender) last(t *testing.T) sentMessage {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.messages)
	return s.messages[len(s.messages)-1]
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func callbacks(kb telegram.Keyboard) []string {
	var out []string
	for _, row := range kb {
		for _, b := range row {
			out = append(out, b.CallbackData)
		}
	}
	return out
}

type engineFixture struct {
	engine        *Engine
	conversations *memory.ConversationRepository
	transactions  *memory.TransactionRepository
	gateway       *gatewayMocks.Gateway
	sender        *recordingSender
	publisher     *eventMocks.PurchasePublisher
	poller        *mocks.ConfirmationPoller
}

func defaultCatalog() *Catalog {
	return NewCatalog([]sellauth.Product{
		{ID: "1", Name: "Key", Variants: []sellauth.Variant{{ID: "10", Name: "Standard"}}},
		{ID: "2", Name: "Widget", Variants: []sellauth.Variant{{ID: "20", Name: "A"}, {ID: "21", Name: "B"}}},
		{ID: "3", Name: "Gadget", Variants: []sellauth.Variant{{ID: "30", Name: "Only"}}},
		{ID: "4", Name: "Empty"},
	})
}

func newEngineFixture(t *testing.T, catalog *Catalog) *engineFixture {
	t.Helper()
	renderer, err := templates.NewRenderer(zap.NewNop(), "")
	require.NoError(t, err)

	f := &engineFixture{
		conversations: memory.NewConversationRepository(0),
		transactions:  memory.NewTransactionRepository(),
		gateway:       gatewayMocks.NewGateway(t),
		sender:        &recordingSender{},
		publisher:     eventMocks.NewPurchasePublisher(t),
		poller:        mocks.NewConfirmationPoller(t),
	}
	f.engine = NewEngine(zap.NewNop(), catalog, f.conversations, f.transactions,
		f.gateway, f.sender, renderer, f.publisher, f.poller,
		Config{PaymentMethods: []string{"BTC", "LTC"}})
	return f
}

func (f *engineFixture) state(t *testing.T) repository.State {
	t.Helper()
	conv, err := f.conversations.Get(context.Background(), buyer)
	if errors.Is(err, repository.ErrConversationNotFound) {
		return repository.StateIdle
	}
	require.NoError(t, err)
	return conv.State
}

func (f *engineFixture) press(t *testing.T, data string) {
	t.Helper()
	require.NoError(t, f.engine.HandleButton(context.Background(), ButtonEvent{
		BuyerID: buyer, ChatID: chat, MessageID: 100, CallbackID: "cb-" + data, Data: data,
	}))
}

func (f *engineFixture) text(t *testing.T, text string) {
	t.Helper()
	require.NoError(t, f.engine.HandleText(context.Background(), TextEvent{BuyerID: buyer, ChatID: chat, Text: text}))
}

func (f *engineFixture) command(t *testing.T, cmd string) {
	t.Helper()
	require.NoError(t, f.engine.HandleCommand(context.Background(), CommandEvent{BuyerID: buyer, ChatID: chat, Command: cmd}))
}

func TestEngine_EndToEndPurchase(t *testing.T) {
	f := newEngineFixture(t, NewCatalog([]sellauth.Product{
		{ID: "1", Name: "Key", Variants: []sellauth.Variant{{ID: "10", Name: "Standard"}}},
	}))
	ctx := context.Background()

	// /start -> выбор товара
	f.command(t, CommandStart)
	msg := f.sender.last(t)
	assert.Equal(t, chat, msg.ChatID)
	assert.Equal(t, []string{"purchase_Key"}, callbacks(msg.Reply.Keyboard))
	assert.Equal(t, "Key", msg.Reply.Keyboard[0][0].Text)
	assert.Equal(t, repository.StateAwaitingProductChoice, f.state(t))

	// один вариант -> сразу способы оплаты
	f.press(t, "purchase_Key")
	msg = f.sender.last(t)
	assert.Equal(t, int64(100), msg.MessageID)
	assert.Equal(t, []string{"pay_Key_10_BTC", "pay_Key_10_LTC"}, callbacks(msg.Reply.Keyboard))
	assert.Equal(t, repository.StateAwaitingPaymentMethod, f.state(t))

	f.press(t, "pay_Key_10_BTC")
	msg = f.sender.last(t)
	assert.Contains(t, msg.Reply.Text, "reply with your email")
	assert.Empty(t, msg.Reply.Keyboard)
	assert.Equal(t, repository.StateAwaitingContactInfo, f.state(t))

	f.gateway.On("CreateCheckout", mock.Anything, sellauth.CheckoutRequest{
		ProductID:     "1",
		VariantID:     "10",
		Quantity:      1,
		PaymentMethod: "BTC",
		Email:         "a@b.com",
	}).Return(sellauth.Checkout{
		InvoiceURL: "https://pay.example/inv/1",
		TxID:       "tx-1",
		Address:    "bc1qxyz",
		Amount:     decimal.NewNullDecimal(decimal.RequireFromString("0.0012")),
	}, nil).Once()
	f.publisher.On("PublishPurchaseCreated", mock.Anything, mock.MatchedBy(func(e event.PurchaseCreated) bool {
		return e.TxID == "tx-1" && e.BuyerID == buyer && e.Amount == "0.0012" && e.VariantID == "10"
	})).Return(nil).Once()
	f.poller.On("Start", poller.Job{BuyerID: buyer, ProductName: "Key", TxID: "tx-1"}).Return(true).Once()

	f.text(t, "a@b.com")

	msg = f.sender.last(t)
	assert.Equal(t, chat, msg.ChatID)
	assert.Equal(t, telegram.ParseModeMarkdown, msg.Reply.ParseMode)
	assert.Contains(t, msg.Reply.Text, "https://pay.example/inv/1")
	assert.Contains(t, msg.Reply.Text, "0.0012 BTC")
	require.Len(t, msg.Reply.Keyboard, 1)
	assert.Equal(t, "https://pay.example/inv/1", msg.Reply.Keyboard[0][0].URL)

	assert.Equal(t, repository.StateIdle, f.state(t))

	rec, err := f.transactions.Get(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, repository.TransactionRecord{
		BuyerID: buyer, ProductName: "Key", TxID: "tx-1", Currency: "BTC", Status: repository.StatusPending,
	}, rec)

	assert.Contains(t, f.sender.answered, "cb-purchase_Key")
	assert.Contains(t, f.sender.answered, "cb-pay_Key_10_BTC")
}

func TestEngine_ProductWithSeveralVariantsShowsVariantChooser(t *testing.T) {
	f := newEngineFixture(t, defaultCatalog())

	f.command(t, CommandStart)
	f.press(t, "purchase_Widget")

	msg := f.sender.last(t)
	assert.Equal(t, []string{"variant_Widget_20", "variant_Widget_21"}, callbacks(msg.Reply.Keyboard))
	assert.Equal(t, "A", msg.Reply.Keyboard[0][0].Text)
	assert.Equal(t, repository.StateAwaitingVariantChoice, f.state(t))

	f.press(t, "variant_Widget_21")
	msg = f.sender.last(t)
	assert.Equal(t, []string{"pay_Widget_21_BTC", "pay_Widget_21_LTC"}, callbacks(msg.Reply.Keyboard))
	assert.Contains(t, msg.Reply.Text, "Widget (B)")
	assert.Equal(t, repository.StateAwaitingPaymentMethod, f.state(t))

	conv, err := f.conversations.Get(context.Background(), buyer)
	require.NoError(t, err)
	assert.Equal(t, "Widget", conv.ProductName)
	assert.Equal(t, "21", conv.VariantID)
}

func TestEngine_SingleVariantSkipsVariantChooser(t *testing.T) {
	f := newEngineFixture(t, defaultCatalog())

	f.command(t, CommandStart)
	f.press(t, "purchase_Gadget")

	msg := f.sender.last(t)
	assert.Equal(t, []string{"pay_Gadget_30_BTC", "pay_Gadget_30_LTC"}, callbacks(msg.Reply.Keyboard))
	assert.NotContains(t, msg.Reply.Text, "(Only)")
	assert.Equal(t, repository.StateAwaitingPaymentMethod, f.state(t))
}

func TestEngine_InvalidEmailReprompts(t *testing.T) {
	f := newEngineFixture(t, defaultCatalog())

	f.command(t, CommandStart)
	f.press(t, "purchase_Key")
	f.press(t, "pay_Key_10_LTC")

	f.text(t, "not-an-email")

	msg := f.sender.last(t)
	assert.Contains(t, msg.Reply.Text, "valid email")
	assert.Equal(t, repository.StateAwaitingContactInfo, f.state(t))

	records, err := f.transactions.ListByStatus(context.Background(), repository.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, records)
	f.gateway.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything)
}

func TestEngine_EmailConsumesPendingPurchaseOnce(t *testing.T) {
	f := newEngineFixture(t, defaultCatalog())

	f.command(t, CommandStart)
	f.press(t, "purchase_Key")
	f.press(t, "pay_Key_10_LTC")

	f.gateway.On("CreateCheckout", mock.Anything, mock.Anything).
		Return(sellauth.Checkout{InvoiceURL: "https://pay.example/inv/2", TxID: "tx-2"}, nil).Once()
	f.publisher.On("PublishPurchaseCreated", mock.Anything, mock.Anything).Return(nil).Once()
	f.poller.On("Start", mock.Anything).Return(true).Once()

	f.text(t, "user@example.com")
	// Вторая отправка email: pending покупки уже нет
	f.text(t, "user@example.com")

	assert.Contains(t, f.sender.last(t).Reply.Text, "/start")
	assert.Equal(t, repository.StateIdle, f.state(t))
}

func TestEngine_ConcurrentEmailsCreateOneCheckout(t *testing.T) {
	f := newEngineFixture(t, defaultCatalog())

	f.command(t, CommandStart)
	f.press(t, "purchase_Key")
	f.press(t, "pay_Key_10_BTC")

	f.gateway.On("CreateCheckout", mock.Anything, mock.Anything).
		Return(sellauth.Checkout{InvoiceURL: "u", TxID: "tx-c"}, nil).Once()
	f.publisher.On("PublishPurchaseCreated", mock.Anything, mock.Anything).Return(nil).Once()
	f.poller.On("Start", mock.Anything).Return(true).Once()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.engine.HandleText(context.Background(), TextEvent{BuyerID: buyer, ChatID: chat, Text: "a@b.com"})
		}()
	}
	wg.Wait()

	f.gateway.AssertNumberOfCalls(t, "CreateCheckout", 1)
}

func TestEngine_NewPaymentSelectionReplacesPendingPurchase(t *testing.T) {
	f := newEngineFixture(t, defaultCatalog())

	f.command(t, CommandStart)
	f.press(t, "purchase_Key")
	f.press(t, "pay_Key_10_BTC")
	f.press(t, "pay_Gadget_30_LTC")

	assert.Equal(t, 1, f.conversations.Len())
	conv, err := f.conversations.Get(context.Background(), buyer)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", conv.ProductName)
	assert.Equal(t, "30", conv.VariantID)
	assert.Equal(t, "LTC", conv.PaymentMethod)

	f.gateway.On("CreateCheckout", mock.Anything, mock.MatchedBy(func(r sellauth.CheckoutRequest) bool {
		return r.ProductID == "3" && r.VariantID == "30" && r.PaymentMethod == "LTC"
	})).Return(sellauth.Checkout{InvoiceURL: "u"}, nil).Once()

	f.text(t, "a@b.com")
}

func TestEngine_UnknownSelectionsAbortToIdle(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "unknown product", data: "purchase_Nope", want: "Product not found"},
		{name: "product without variants", data: "purchase_Empty", want: "Variant not found"},
		{name: "unknown variant", data: "variant_Widget_99", want: "Variant not found"},
		{name: "variant of unknown product", data: "variant_Nope_20", want: "Product not found"},
		{name: "pay unknown variant", data: "pay_Key_99_BTC", want: "Variant not found"},
		{name: "pay unknown method", data: "pay_Key_10_DOGE", want: "Payment method not found"},
		{name: "garbage", data: "product_1", want: "Product not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t, defaultCatalog())
			f.command(t, CommandStart)
			f.press(t, "purchase_Widget")

			f.press(t, tt.data)

			assert.Contains(t, f.sender.last(t).Reply.Text, tt.want)
			assert.Empty(t, f.sender.last(t).Reply.Keyboard)
			assert.Equal(t, repository.StateIdle, f.state(t))
		})
	}
}

func TestEngine_CheckoutFailureReportsAndResets(t *testing.T) {
	f := newEngineFixture(t, defaultCatalog())

	f.command(t, CommandStart)
	f.press(t, "purchase_Key")
	f.press(t, "pay_Key_10_BTC")

	f.gateway.On("CreateCheckout", mock.Anything, mock.Anything).
		Return(sellauth.Checkout{}, &sellauth.GatewayError{Op: "create checkout", StatusCode: 500, Body: "internal"}).Once()

	f.text(t, "a@b.com")

	msg := f.sender.last(t)
	assert.Equal(t, "Failed to set up payment. Please try again later.", msg.Reply.Text)
	assert.NotContains(t, msg.Reply.Text, "internal")
	assert.Equal(t, repository.StateIdle, f.state(t))

	records, err := f.transactions.ListByStatus(context.Background(), repository.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEngine_CheckoutWithoutTxIDIsNotTracked(t *testing.T) {
	f := newEngineFixture(t, defaultCatalog())

	f.command(t, CommandStart)
	f.press(t, "purchase_Key")
	f.press(t, "pay_Key_10_BTC")

	f.gateway.On("CreateCheckout", mock.Anything, mock.Anything).
		Return(sellauth.Checkout{InvoiceURL: "https://pay.example/inv/3"}, nil).Once()

	f.text(t, "a@b.com")

	assert.Contains(t, f.sender.last(t).Reply.Text, "https://pay.example/inv/3")
	records, err := f.transactions.ListByStatus(context.Background(), repository.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEngine_PublishErrorDoesNotBreakCheckout(t *testing.T) {
	f := newEngineFixture(t, defaultCatalog())

	f.command(t, CommandStart)
	f.press(t, "purchase_Key")
	f.press(t, "pay_Key_10_BTC")

	f.gateway.On("CreateCheckout", mock.Anything, mock.Anything).
		Return(sellauth.Checkout{InvoiceURL: "u", TxID: "tx-p"}, nil).Once()
	f.publisher.On("PublishPurchaseCreated", mock.Anything, mock.Anything).Return(errors.New("kafka down")).Once()
	f.poller.On("Start", mock.Anything).Return(true).Once()

	f.text(t, "a@b.com")

	_, err := f.transactions.Get(context.Background(), "tx-p")
	require.NoError(t, err)
}

func TestEngine_UnsavedRecordIsNotTracked(t *testing.T) {
	renderer, err := templates.NewRenderer(zap.NewNop(), "")
	require.NoError(t, err)

	transactions := repoMocks.NewTransactionRepository(t)
	transactions.On("Upsert", mock.Anything, mock.MatchedBy(func(rec repository.TransactionRecord) bool {
		return rec.TxID == "tx-lost"
	})).Return(errors.New("disk full")).Once()

	gateway := gatewayMocks.NewGateway(t)
	gateway.On("CreateCheckout", mock.Anything, mock.Anything).
		Return(sellauth.Checkout{InvoiceURL: "https://pay/lost", TxID: "tx-lost"}, nil).Once()

	// Ни события, ни поллера: ожидания на моках не заданы
	publisher := eventMocks.NewPurchasePublisher(t)
	confirmations := mocks.NewConfirmationPoller(t)

	sender := &recordingSender{}
	engine := NewEngine(zap.NewNop(), defaultCatalog(), memory.NewConversationRepository(0), transactions,
		gateway, sender, renderer, publisher, confirmations, Config{PaymentMethods: []string{"BTC"}})

	ctx := context.Background()
	require.NoError(t, engine.HandleCommand(ctx, CommandEvent{BuyerID: buyer, ChatID: chat, Command: CommandStart}))
	require.NoError(t, engine.HandleButton(ctx, ButtonEvent{BuyerID: buyer, ChatID: chat, MessageID: 100, Data: "purchase_Key"}))
	require.NoError(t, engine.HandleButton(ctx, ButtonEvent{BuyerID: buyer, ChatID: chat, MessageID: 100, Data: "pay_Key_10_BTC"}))
	require.NoError(t, engine.HandleText(ctx, TextEvent{BuyerID: buyer, ChatID: chat, Text: "a@b.com"}))

	require.GreaterOrEqual(t, len(sender.messages), 2)
	invoice := sender.messages[len(sender.messages)-2]
	assert.Contains(t, invoice.Reply.Text, "Invoice for Key")

	notice := sender.last(t)
	assert.Equal(t, chat, notice.ChatID)
	assert.Contains(t, notice.Reply.Text, "will not be sent automatically")
	assert.Contains(t, notice.Reply.Text, "tx-lost")

	publisher.AssertNotCalled(t, "PublishPurchaseCreated", mock.Anything, mock.Anything)
	confirmations.AssertNotCalled(t, "Start", mock.Anything)
}

func TestEngine_RepeatedTxIDKeepsCompletedRecord(t *testing.T) {
	f := newEngineFixture(t, defaultCatalog())
	require.NoError(t, f.transactions.Upsert(context.Background(), repository.TransactionRecord{
		BuyerID: buyer, ProductName: "Key", TxID: "tx-paid", Currency: "BTC", Status: repository.StatusCompleted,
	}))

	f.command(t, CommandStart)
	f.press(t, "purchase_Key")
	f.press(t, "pay_Key_10_BTC")

	f.gateway.On("CreateCheckout", mock.Anything, mock.Anything).
		Return(sellauth.Checkout{InvoiceURL: "u", TxID: "tx-paid"}, nil).Once()
	f.publisher.On("PublishPurchaseCreated", mock.Anything, mock.Anything).Return(nil).Once()
	f.poller.On("Start", mock.Anything).Return(true).Once()

	f.text(t, "a@b.com")

	rec, err := f.transactions.Get(context.Background(), "tx-paid")
	require.NoError(t, err)
	assert.Equal(t, repository.StatusCompleted, rec.Status)
}

func TestEngine_EmptyCatalog(t *testing.T) {
	f := newEngineFixture(t, NewCatalog(nil))

	f.command(t, CommandStart)

	msg := f.sender.last(t)
	assert.Contains(t, msg.Reply.Text, "No products available")
	assert.Empty(t, msg.Reply.Keyboard)
	assert.Equal(t, repository.StateIdle, f.state(t))
}

func TestEngine_CancelAndHelp(t *testing.T) {
	f := newEngineFixture(t, defaultCatalog())

	f.command(t, CommandStart)
	f.press(t, "purchase_Key")
	f.press(t, "pay_Key_10_BTC")

	f.command(t, CommandCancel)
	assert.Contains(t, f.sender.last(t).Reply.Text, "cancelled")
	assert.Equal(t, repository.StateIdle, f.state(t))

	f.command(t, CommandHelp)
	assert.Contains(t, f.sender.last(t).Reply.Text, "/start")

	f.command(t, "/whatever")
	assert.Contains(t, f.sender.last(t).Reply.Text, "/cancel")
}

func TestEngine_TextWhileIdle(t *testing.T) {
	f := newEngineFixture(t, defaultCatalog())

	f.text(t, "a@b.com")

	assert.Equal(t, "Send /start to browse products.", f.sender.last(t).Reply.Text)
	f.gateway.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything)
}

func TestEngine_EditFailureFallsBackToSend(t *testing.T) {
	f := newEngineFixture(t, defaultCatalog())
	f.sender.editErr = telegram.ErrTransport

	f.command(t, CommandStart)
	before := f.sender.count()
	f.press(t, "purchase_Widget")

	require.Equal(t, before+1, f.sender.count())
	msg := f.sender.last(t)
	assert.Zero(t, msg.MessageID)
	assert.True(t, strings.HasPrefix(msg.Reply.Keyboard[0][0].CallbackData, "variant_Widget_"))
}

func TestEngine_StoreFailureReportsToBuyer(t *testing.T) {
	renderer, err := templates.NewRenderer(zap.NewNop(), "")
	require.NoError(t, err)

	conversations := repoMocks.NewConversationRepository(t)
	storeErr := errors.New("redis: connection refused")
	conversations.On("Save", mock.Anything, mock.Anything).Return(storeErr).Once()
	conversations.On("Delete", mock.Anything, buyer).Return(nil).Once()

	sender := &recordingSender{}
	engine := NewEngine(zap.NewNop(), defaultCatalog(), conversations, memory.NewTransactionRepository(),
		gatewayMocks.NewGateway(t), sender, renderer, eventMocks.NewPurchasePublisher(t), mocks.NewConfirmationPoller(t), Config{})

	err = engine.HandleCommand(context.Background(), CommandEvent{BuyerID: buyer, ChatID: chat, Command: CommandStart})
	assert.ErrorIs(t, err, storeErr)
	assert.Contains(t, sender.last(t).Reply.Text, "Something went wrong")
}

func TestEngine_DefaultPaymentMethods(t *testing.T) {
	renderer, err := templates.NewRenderer(zap.NewNop(), "")
	require.NoError(t, err)

	sender := &recordingSender{}
	engine := NewEngine(zap.NewNop(), defaultCatalog(), memory.NewConversationRepository(0), memory.NewTransactionRepository(),
		gatewayMocks.NewGateway(t), sender, renderer, eventMocks.NewPurchasePublisher(t), mocks.NewConfirmationPoller(t), Config{})

	require.NoError(t, engine.HandleButton(context.Background(), ButtonEvent{BuyerID: buyer, ChatID: chat, Data: "purchase_Key"}))
	assert.Equal(t, []string{"pay_Key_10_BTC", "pay_Key_10_LTC", "pay_Key_10_ETH"}, callbacks(sender.last(t).Reply.Keyboard))
	assert.Empty(t, sender.answered)
}
