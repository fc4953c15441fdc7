package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
)

// TransactionRepository реализует repository.TransactionRepository в памяти.
// Используется для разработки и тестов, данные теряются при рестарте.
type TransactionRepository struct {
	mu      sync.RWMutex
	records map[string]repository.TransactionRecord // ключ = txid
}

// NewTransactionRepository создаёт пустой in-memory репозиторий
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		records: make(map[string]repository.TransactionRecord),
	}
}

// Upsert вставляет или перезаписывает запись; completed статус сохраняется
func (r *TransactionRepository) Upsert(ctx context.Context, rec repository.TransactionRecord) error {
	if err := repository.ValidateRecord(rec); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.records[rec.TxID]; ok && prev.Status == repository.StatusCompleted {
		rec.Status = repository.StatusCompleted
	}
	r.records[rec.TxID] = rec
	return nil
}

// UpdateStatus переводит pending запись в новый статус
func (r *TransactionRepository) UpdateStatus(ctx context.Context, txid string, status repository.Status) (bool, error) {
	if !status.Valid() {
		return false, repository.ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[txid]
	if !ok || rec.Status != repository.StatusPending {
		return false, nil
	}
	rec.Status = status
	r.records[txid] = rec
	return true, nil
}

// Get возвращает запись по txid
func (r *TransactionRepository) Get(ctx context.Context, txid string) (repository.TransactionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[txid]
	if !ok {
		return repository.TransactionRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

// ListByStatus возвращает записи с указанным статусом, отсортированные по txid
func (r *TransactionRepository) ListByStatus(ctx context.Context, status repository.Status) ([]repository.TransactionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]repository.TransactionRecord, 0)
	for _, rec := range r.records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TxID < out[j].TxID })
	return out, nil
}
