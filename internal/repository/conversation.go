package repository

import (
	"context"
	"errors"
	"time"
)

// State: явное состояние диалога покупки для одного покупателя
type State string

const (
	StateIdle                  State = "idle"
	StateAwaitingProductChoice State = "awaiting_product"
	StateAwaitingVariantChoice State = "awaiting_variant"
	StateAwaitingPaymentMethod State = "awaiting_payment"
	StateAwaitingContactInfo   State = "awaiting_contact"
)

// Conversation: единственная запись на покупателя: состояние диалога
// и поля незавершённой покупки (PendingPurchase). Новая запись
// перезаписывает предыдущую, поэтому у покупателя не больше одной pending покупки.
type Conversation struct {
	BuyerID       int64
	ChatID        int64
	State         State
	ProductName   string
	VariantID     string
	PaymentMethod string
	UpdatedAt     time.Time
}

// HasPendingPurchase: выбраны товар, вариант и способ оплаты, ждём контакт
func (c Conversation) HasPendingPurchase() bool {
	return c.State == StateAwaitingContactInfo && c.ProductName != "" && c.PaymentMethod != ""
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=ConversationRepository --dir=. --output=./mocks --outpkg=mocks

// ConversationRepository хранит состояние диалогов.
// Записи живут не дольше TTL реализации: брошенный диалог истекает сам.
type ConversationRepository interface {
	// Get возвращает диалог или ErrConversationNotFound (эквивалент Idle)
	Get(ctx context.Context, buyerID int64) (Conversation, error)

	// Save перезаписывает диалог покупателя и продлевает TTL
	Save(ctx context.Context, conv Conversation) error

	// Take атомарно читает и удаляет диалог (потребление pending покупки).
	// Из двух конкурентных Take успешен только один.
	Take(ctx context.Context, buyerID int64) (Conversation, error)

	// Delete удаляет диалог; отсутствие записи не ошибка
	Delete(ctx context.Context, buyerID int64) error
}

// ErrConversationNotFound: у покупателя нет активного диалога
var ErrConversationNotFound = errors.New("conversation not found")
