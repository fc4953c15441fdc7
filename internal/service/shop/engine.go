// Package shop ведёт диалог покупки: выбор товара, варианта и способа оплаты,
// запрос email и создание счёта. Состояние диалога хранится явно,
// по одной записи на покупателя.
package shop

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/client/sellauth"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/event"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/service/poller"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/telegram"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/templates"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/observability"
)

// Команды бота
const (
	CommandStart  = "/start"
	CommandCancel = "/cancel"
	CommandHelp   = "/help"
)

// DefaultPaymentMethods способы оплаты, если конфиг не задан
var DefaultPaymentMethods = []string{"BTC", "LTC", "ETH"}

var tracer = otel.Tracer("shop")

// CommandEvent команда из чата (/start, /cancel, /help)
type CommandEvent struct {
	BuyerID int64
	ChatID  int64
	Command string
}

// ButtonEvent нажатие inline-кнопки
type ButtonEvent struct {
	BuyerID    int64
	ChatID     int64
	MessageID  int64
	CallbackID string
	Data       string
}

// TextEvent свободный текст от покупателя
type TextEvent struct {
	BuyerID int64
	ChatID  int64
	Text    string
}

// Config параметры диалога
type Config struct {
	// PaymentMethods фиксированный список кодов шлюзов оплаты
	PaymentMethods []string
}

// Engine конечный автомат диалога покупки
type Engine struct {
	logger        *zap.Logger
	catalog       *Catalog
	conversations repository.ConversationRepository
	transactions  repository.TransactionRepository
	gateway       sellauth.Gateway
	sender        telegram.Sender
	renderer      *templates.Renderer
	publisher     event.PurchasePublisher
	poller        ConfirmationPoller

	methods   []string
	methodSet map[string]struct{}
}

// NewEngine создаёт движок диалога. Каталог принадлежит движку и не меняется.
func NewEngine(
	logger *zap.Logger,
	catalog *Catalog,
	conversations repository.ConversationRepository,
	transactions repository.TransactionRepository,
	gateway sellauth.Gateway,
	sender telegram.Sender,
	renderer *templates.Renderer,
	publisher event.PurchasePublisher,
	confirmations ConfirmationPoller,
	cfg Config,
) *Engine {
	methods := cfg.PaymentMethods
	if len(methods) == 0 {
		methods = DefaultPaymentMethods
	}
	methodSet := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		methodSet[m] = struct{}{}
	}

	return &Engine{
		logger:        logger,
		catalog:       catalog,
		conversations: conversations,
		transactions:  transactions,
		gateway:       gateway,
		sender:        sender,
		renderer:      renderer,
		publisher:     publisher,
		poller:        confirmations,
		methods:       methods,
		methodSet:     methodSet,
	}
}

// HandleCommand обрабатывает команды бота
func (e *Engine) HandleCommand(ctx context.Context, ev CommandEvent) error {
	ctx, span := tracer.Start(ctx, "shop.HandleCommand", trace.WithAttributes(
		attribute.Int64("buyer_id", ev.BuyerID),
		attribute.String("command", ev.Command),
	))
	defer span.End()

	logger := observability.L(ctx, e.logger).With(zap.Int64("buyer_id", ev.BuyerID))

	switch ev.Command {
	case CommandStart:
		return e.fail(ctx, logger, span, ev.BuyerID, ev.ChatID, e.startBrowsing(ctx, logger, ev))
	case CommandCancel:
		if err := e.conversations.Delete(ctx, ev.BuyerID); err != nil {
			return e.fail(ctx, logger, span, ev.BuyerID, ev.ChatID, err)
		}
		logger.Info("purchase cancelled by buyer")
		e.send(ctx, logger, ev.ChatID, telegram.Reply{Text: e.render(templates.Cancelled, nil, "Purchase cancelled.")})
		return nil
	default:
		e.send(ctx, logger, ev.ChatID, telegram.Reply{Text: e.render(templates.Help, nil, "/start - browse products")})
		return nil
	}
}

// startBrowsing Idle -> AwaitingProductChoice
func (e *Engine) startBrowsing(ctx context.Context, logger *zap.Logger, ev CommandEvent) error {
	if e.catalog.Len() == 0 {
		// Каталог пуст (или не загрузился): диалог не начинаем
		if err := e.conversations.Delete(ctx, ev.BuyerID); err != nil {
			logger.Warn("failed to reset conversation", zap.Error(err))
		}
		e.send(ctx, logger, ev.ChatID, telegram.Reply{Text: e.render(templates.NoProducts, nil, "No products available.")})
		return nil
	}

	// Новый /start сбрасывает незавершённую покупку
	if err := e.conversations.Save(ctx, repository.Conversation{
		BuyerID: ev.BuyerID,
		ChatID:  ev.ChatID,
		State:   repository.StateAwaitingProductChoice,
	}); err != nil {
		return err
	}

	keyboard := make(telegram.Keyboard, 0, e.catalog.Len())
	for _, p := range e.catalog.Products() {
		keyboard = append(keyboard, []telegram.Button{{Text: p.Name, CallbackData: PurchaseData(p.Name)}})
	}

	logger.Debug("product chooser sent", zap.Int("products", len(keyboard)))
	e.send(ctx, logger, ev.ChatID, telegram.Reply{
		Text:     e.render(templates.Products, nil, "Select a product to buy:"),
		Keyboard: keyboard,
	})
	return nil
}

// HandleButton обрабатывает нажатия кнопок выбора товара, варианта и способа оплаты.
// Callback data несёт весь контекст выбора, поэтому кнопка старого сообщения
// продолжает диалог с того места, которое она описывает.
func (e *Engine) HandleButton(ctx context.Context, ev ButtonEvent) error {
	ctx, span := tracer.Start(ctx, "shop.HandleButton", trace.WithAttributes(
		attribute.Int64("buyer_id", ev.BuyerID),
		attribute.String("callback_data", ev.Data),
	))
	defer span.End()

	logger := observability.L(ctx, e.logger).With(zap.Int64("buyer_id", ev.BuyerID))

	if ev.CallbackID != "" {
		if err := e.sender.AnswerCallback(ctx, ev.CallbackID); err != nil {
			logger.Warn("failed to answer callback query", zap.Error(err))
		}
	}

	action, err := ParseCallback(ev.Data)
	if err != nil {
		logger.Warn("unparsable callback data", zap.String("data", ev.Data), zap.Error(err))
		return e.abort(ctx, logger, ev.BuyerID, ev.ChatID, ev.MessageID, &ValidationError{What: "Product", Key: ev.Data})
	}

	switch action.Kind {
	case ActionPurchase:
		err = e.chooseProduct(ctx, logger, ev, action)
	case ActionVariant:
		err = e.chooseVariant(ctx, logger, ev, action)
	default:
		err = e.choosePaymentMethod(ctx, logger, ev, action)
	}
	return e.fail(ctx, logger, span, ev.BuyerID, ev.ChatID, err)
}

// chooseProduct -> AwaitingVariantChoice (вариантов > 1) или AwaitingPaymentMethod
func (e *Engine) chooseProduct(ctx context.Context, logger *zap.Logger, ev ButtonEvent, action Action) error {
	product, ok := e.catalog.Product(action.Product)
	if !ok {
		return e.abort(ctx, logger, ev.BuyerID, ev.ChatID, ev.MessageID, &ValidationError{What: "Product", Key: action.Product})
	}

	switch len(product.Variants) {
	case 0:
		// Товар без вариантов купить нельзя
		return e.abort(ctx, logger, ev.BuyerID, ev.ChatID, ev.MessageID, &ValidationError{What: "Variant", Key: product.Name})
	case 1:
		return e.presentPaymentMethods(ctx, logger, ev, product, product.Variants[0])
	}

	if err := e.conversations.Save(ctx, repository.Conversation{
		BuyerID:     ev.BuyerID,
		ChatID:      ev.ChatID,
		State:       repository.StateAwaitingVariantChoice,
		ProductName: product.Name,
	}); err != nil {
		return err
	}

	keyboard := make(telegram.Keyboard, 0, len(product.Variants))
	for _, v := range product.Variants {
		label := v.Name
		if label == "" {
			label = v.ID.String()
		}
		keyboard = append(keyboard, []telegram.Button{{Text: label, CallbackData: VariantData(product.Name, v.ID.String())}})
	}

	e.reply(ctx, logger, ev.ChatID, ev.MessageID, telegram.Reply{
		Text:     e.render(templates.Variants, map[string]string{"Product": product.Name}, "Select a variant:"),
		Keyboard: keyboard,
	})
	return nil
}

// chooseVariant AwaitingVariantChoice -> AwaitingPaymentMethod
func (e *Engine) chooseVariant(ctx context.Context, logger *zap.Logger, ev ButtonEvent, action Action) error {
	product, variant, ok := e.catalog.Variant(action.Product, action.VariantID)
	if !ok {
		what, key := "Variant", action.VariantID
		if product.Name == "" {
			what, key = "Product", action.Product
		}
		return e.abort(ctx, logger, ev.BuyerID, ev.ChatID, ev.MessageID, &ValidationError{What: what, Key: key})
	}
	return e.presentPaymentMethods(ctx, logger, ev, product, variant)
}

func (e *Engine) presentPaymentMethods(ctx context.Context, logger *zap.Logger, ev ButtonEvent, product sellauth.Product, variant sellauth.Variant) error {
	if err := e.conversations.Save(ctx, repository.Conversation{
		BuyerID:     ev.BuyerID,
		ChatID:      ev.ChatID,
		State:       repository.StateAwaitingPaymentMethod,
		ProductName: product.Name,
		VariantID:   variant.ID.String(),
	}); err != nil {
		return err
	}

	keyboard := make(telegram.Keyboard, 0, len(e.methods))
	for _, m := range e.methods {
		keyboard = append(keyboard, []telegram.Button{{Text: m, CallbackData: PayData(product.Name, variant.ID.String(), m)}})
	}

	// Вариант показываем, только если у товара был выбор
	variantName := ""
	if len(product.Variants) > 1 {
		variantName = variant.Name
	}
	e.reply(ctx, logger, ev.ChatID, ev.MessageID, telegram.Reply{
		Text: e.render(templates.PaymentMethods,
			map[string]string{"Product": product.Name, "Variant": variantName},
			"Choose your payment method:"),
		Keyboard: keyboard,
	})
	return nil
}

// choosePaymentMethod AwaitingPaymentMethod -> AwaitingContactInfo.
// Запись диалога перезаписывается, у покупателя не больше одной pending покупки.
func (e *Engine) choosePaymentMethod(ctx context.Context, logger *zap.Logger, ev ButtonEvent, action Action) error {
	product, variant, ok := e.catalog.Variant(action.Product, action.VariantID)
	if !ok {
		what, key := "Variant", action.VariantID
		if product.Name == "" {
			what, key = "Product", action.Product
		}
		return e.abort(ctx, logger, ev.BuyerID, ev.ChatID, ev.MessageID, &ValidationError{What: what, Key: key})
	}
	if _, ok := e.methodSet[action.PaymentMethod]; !ok {
		return e.abort(ctx, logger, ev.BuyerID, ev.ChatID, ev.MessageID, &ValidationError{What: "Payment method", Key: action.PaymentMethod})
	}

	if err := e.conversations.Save(ctx, repository.Conversation{
		BuyerID:       ev.BuyerID,
		ChatID:        ev.ChatID,
		State:         repository.StateAwaitingContactInfo,
		ProductName:   product.Name,
		VariantID:     variant.ID.String(),
		PaymentMethod: action.PaymentMethod,
	}); err != nil {
		return err
	}

	logger.Info("pending purchase recorded",
		zap.String("product", product.Name),
		zap.String("variant_id", variant.ID.String()),
		zap.String("payment_method", action.PaymentMethod),
	)
	e.reply(ctx, logger, ev.ChatID, ev.MessageID, telegram.Reply{
		Text: e.render(templates.EmailPrompt,
			map[string]string{"PaymentMethod": action.PaymentMethod},
			"Please reply with your email address."),
	})
	return nil
}

// HandleText обрабатывает ответ с email в состоянии AwaitingContactInfo
func (e *Engine) HandleText(ctx context.Context, ev TextEvent) error {
	ctx, span := tracer.Start(ctx, "shop.HandleText", trace.WithAttributes(
		attribute.Int64("buyer_id", ev.BuyerID),
	))
	defer span.End()

	logger := observability.L(ctx, e.logger).With(zap.Int64("buyer_id", ev.BuyerID))

	conv, err := e.conversations.Get(ctx, ev.BuyerID)
	if err != nil && !errors.Is(err, repository.ErrConversationNotFound) {
		return e.fail(ctx, logger, span, ev.BuyerID, ev.ChatID, err)
	}
	if err != nil || conv.State != repository.StateAwaitingContactInfo {
		e.send(ctx, logger, ev.ChatID, telegram.Reply{Text: e.render(templates.Idle, nil, "Send /start to browse products.")})
		return nil
	}

	email := strings.TrimSpace(ev.Text)
	if !LooksLikeEmail(email) {
		e.send(ctx, logger, ev.ChatID, telegram.Reply{Text: e.render(templates.EmailInvalid, nil, "Please reply with a valid email.")})
		return nil
	}

	// Take потребляет pending покупку атомарно: повторная отправка email
	// не создаст второй checkout
	pending, err := e.conversations.Take(ctx, ev.BuyerID)
	if errors.Is(err, repository.ErrConversationNotFound) {
		logger.Debug("pending purchase already consumed")
		return nil
	}
	if err != nil {
		return e.fail(ctx, logger, span, ev.BuyerID, ev.ChatID, err)
	}
	if !pending.HasPendingPurchase() {
		e.send(ctx, logger, ev.ChatID, telegram.Reply{Text: e.render(templates.Idle, nil, "Send /start to browse products.")})
		return nil
	}

	return e.checkout(ctx, logger, span, ev, pending, email)
}

// checkout AwaitingContactInfo -> Idle: создаёт счёт, запись pending и задачу поллера
func (e *Engine) checkout(ctx context.Context, logger *zap.Logger, span trace.Span, ev TextEvent, pending repository.Conversation, email string) error {
	product, ok := e.catalog.Product(pending.ProductName)
	if !ok {
		return e.abort(ctx, logger, ev.BuyerID, ev.ChatID, 0, &ValidationError{What: "Product", Key: pending.ProductName})
	}

	checkout, err := e.gateway.CreateCheckout(ctx, sellauth.CheckoutRequest{
		ProductID:     product.ID,
		VariantID:     sellauth.ID(pending.VariantID),
		Quantity:      1,
		PaymentMethod: pending.PaymentMethod,
		Email:         email,
	})
	if err != nil {
		logger.Error("failed to create checkout",
			zap.Error(err),
			zap.String("product", product.Name),
			zap.String("payment_method", pending.PaymentMethod),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout failed")
		e.send(ctx, logger, ev.ChatID, telegram.Reply{Text: e.render(templates.CheckoutFailed, nil, "Failed to set up payment.")})
		return nil
	}

	span.SetAttributes(attribute.String("txid", checkout.TxID))

	tracked := false
	if checkout.TxID != "" {
		if err := e.transactions.Upsert(ctx, repository.TransactionRecord{
			BuyerID:     ev.BuyerID,
			ProductName: product.Name,
			TxID:        checkout.TxID,
			Currency:    pending.PaymentMethod,
			Status:      repository.StatusPending,
		}); err != nil {
			logger.Error("failed to save transaction record", zap.Error(err), zap.String("txid", checkout.TxID))
			span.RecordError(err)
		} else {
			tracked = true
		}
	} else {
		logger.Warn("checkout returned no transaction id, payment will not be tracked",
			zap.String("invoice_url", checkout.InvoiceURL),
		)
	}

	amount := ""
	if checkout.Amount.Valid {
		amount = checkout.Amount.Decimal.String()
	}

	reply := telegram.Reply{
		Text: e.render(templates.Invoice, invoiceView{
			Product:       product.Name,
			PaymentMethod: pending.PaymentMethod,
			Amount:        amount,
			Address:       checkout.Address,
			InvoiceURL:    checkout.InvoiceURL,
		}, "Invoice: "+checkout.InvoiceURL),
		ParseMode: telegram.ParseModeMarkdown,
	}
	if checkout.InvoiceURL != "" {
		reply.Keyboard = telegram.Keyboard{{{Text: "Pay", URL: checkout.InvoiceURL}}}
	}
	e.send(ctx, logger, ev.ChatID, reply)

	logger.Info("checkout created",
		zap.String("product", product.Name),
		zap.String("txid", checkout.TxID),
		zap.String("payment_method", pending.PaymentMethod),
	)

	if checkout.TxID == "" {
		return nil
	}
	if !tracked {
		// Без записи поллеру нечего переводить в completed
		e.send(ctx, logger, ev.ChatID, telegram.Reply{Text: e.render(templates.TrackingOff,
			map[string]string{"TxID": checkout.TxID},
			"Payment confirmation is unavailable for transaction "+checkout.TxID+".")})
		return nil
	}

	if err := e.publisher.PublishPurchaseCreated(ctx, event.PurchaseCreated{
		BuyerID:       ev.BuyerID,
		ProductName:   product.Name,
		VariantID:     pending.VariantID,
		TxID:          checkout.TxID,
		PaymentMethod: pending.PaymentMethod,
		Amount:        amount,
		InvoiceURL:    checkout.InvoiceURL,
		OccurredAt:    time.Now().UTC(),
	}); err != nil {
		logger.Warn("failed to publish purchase created event", zap.Error(err))
	}

	e.poller.Start(poller.Job{
		BuyerID:     ev.BuyerID,
		ProductName: product.Name,
		TxID:        checkout.TxID,
	})
	return nil
}

type invoiceView struct {
	Product       string
	PaymentMethod string
	Amount        string
	Address       string
	InvoiceURL    string
}

// LooksLikeEmail минимальная проверка формы email: есть "@" и "."
func LooksLikeEmail(s string) bool {
	return strings.Contains(s, "@") && strings.Contains(s, ".")
}

// abort сообщает покупателю "не найдено" и возвращает диалог в Idle
func (e *Engine) abort(ctx context.Context, logger *zap.Logger, buyerID, chatID, messageID int64, verr *ValidationError) error {
	logger.Info("purchase flow aborted", zap.Error(verr))

	if err := e.conversations.Delete(ctx, buyerID); err != nil {
		logger.Warn("failed to reset conversation", zap.Error(err))
	}
	e.reply(ctx, logger, chatID, messageID, telegram.Reply{
		Text: e.render(templates.NotFound, map[string]string{"What": verr.What}, verr.What+" not found."),
	})
	return nil
}

// reply редактирует сообщение с кнопками, если оно известно, иначе шлёт новое
func (e *Engine) reply(ctx context.Context, logger *zap.Logger, chatID, messageID int64, r telegram.Reply) {
	if messageID == 0 {
		e.send(ctx, logger, chatID, r)
		return
	}
	if err := e.sender.EditMessage(ctx, chatID, messageID, r); err != nil {
		logger.Warn("failed to edit message, sending a new one", zap.Error(err), zap.Int64("message_id", messageID))
		e.send(ctx, logger, chatID, r)
	}
}

// send отправляет сообщение; TransportError только логируется
func (e *Engine) send(ctx context.Context, logger *zap.Logger, chatID int64, r telegram.Reply) {
	if err := e.sender.SendMessage(ctx, chatID, r); err != nil {
		logger.Error("failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (e *Engine) render(name string, data any, fallback string) string {
	return e.renderer.MustRender(name, data, fallback)
}

// fail завершает обработку с внутренней ошибкой (обычно хранилища):
// покупатель получает сообщение о сбое, диалог сбрасывается в Idle
func (e *Engine) fail(ctx context.Context, logger *zap.Logger, span trace.Span, buyerID, chatID int64, err error) error {
	if err == nil {
		return nil
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.Error("purchase flow failed", zap.Error(err))

	if delErr := e.conversations.Delete(ctx, buyerID); delErr != nil {
		logger.Warn("failed to reset conversation", zap.Error(delErr))
	}
	e.send(ctx, logger, chatID, telegram.Reply{Text: e.render(templates.Failed, nil, "Something went wrong. Please try again.")})
	return err
}
