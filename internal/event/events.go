// Package event описывает доменные события покупки, которые публикуются наружу.
package event

import (
	"context"
	"time"
)

// Типы событий
const (
	TypePurchaseCreated   = "shop.purchase.created"
	TypePurchaseCompleted = "shop.purchase.completed"
)

// PurchaseCreated: checkout создан, запись pending сохранена
type PurchaseCreated struct {
	BuyerID       int64
	ProductName   string
	VariantID     string
	TxID          string
	PaymentMethod string
	// Amount строкой, как его вернул шлюз; пусто, если суммы нет
	Amount     string
	InvoiceURL string
	OccurredAt time.Time
}

// PurchaseCompleted: шлюз подтвердил оплату
type PurchaseCompleted struct {
	BuyerID     int64
	ProductName string
	TxID        string
	OccurredAt  time.Time
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=PurchasePublisher --dir=. --output=./mocks --outpkg=mocks

// PurchasePublisher публикует события покупки. Ошибка публикации не должна
// ломать сценарий покупателя: вызывающий только логирует её.
type PurchasePublisher interface {
	PublishPurchaseCreated(ctx context.Context, e PurchaseCreated) error
	PublishPurchaseCompleted(ctx context.Context, e PurchaseCompleted) error
}
