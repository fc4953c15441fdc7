package repository

import (
	"context"
	"errors"
	"fmt"
)

// Status статус покупки в хранилище
type Status string

const (
	// StatusPending: checkout создан, оплата ещё не подтверждена
	StatusPending Status = "pending"
	// StatusCompleted: шлюз подтвердил транзакцию
	StatusCompleted Status = "completed"
)

// Valid сообщает, известен ли статус
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// TransactionRecord: одна попытка покупки, ключ: TxID.
// Создаётся со статусом pending при создании checkout, переводится в completed
// поллером подтверждений; никогда не удаляется.
type TransactionRecord struct {
	BuyerID     int64
	ProductName string
	TxID        string
	Currency    string
	Status      Status
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=TransactionRepository --dir=. --output=./mocks --outpkg=mocks

// TransactionRepository: хранилище записей о покупках.
// Реализации должны быть безопасны для конкурентных вызовов из поллеров и цикла обновлений.
type TransactionRepository interface {
	// Upsert вставляет или перезаписывает запись с тем же TxID (last write wins).
	// Исключение: статус completed сохраняется, повторный Upsert его не откатывает.
	Upsert(ctx context.Context, rec TransactionRecord) error

	// UpdateStatus меняет статус существующей записи и сообщает, была ли она изменена.
	// Неизвестный txid: (false, nil). Запись в статусе completed не меняется:
	// допустим только переход pending -> completed.
	UpdateStatus(ctx context.Context, txid string, status Status) (bool, error)

	// Get возвращает запись или ErrNotFound
	Get(ctx context.Context, txid string) (TransactionRecord, error)

	// ListByStatus возвращает записи с указанным статусом (для возобновления поллинга после рестарта)
	ListByStatus(ctx context.Context, status Status) ([]TransactionRecord, error)
}

// ErrNotFound возвращается, когда запись не найдена
var ErrNotFound = errors.New("transaction not found")

// ErrInvalidStatus возвращается при попытке записать неизвестный статус
var ErrInvalidStatus = errors.New("invalid transaction status")

// ValidateRecord проверяет обязательные поля перед записью
func ValidateRecord(rec TransactionRecord) error {
	if rec.TxID == "" {
		return fmt.Errorf("txid is required")
	}
	if !rec.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, rec.Status)
	}
	return nil
}
