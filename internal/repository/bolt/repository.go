// Package bolt хранит покупки во встроенной BoltDB.
// Ключ бакета: txid, значение: JSON записи.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
)

const bucketName = "transactions"

// storedRecord: формат значения в бакете
type storedRecord struct {
	BuyerID     int64     `json:"user_id"`
	ProductName string    `json:"product"`
	TxID        string    `json:"txid"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s storedRecord) toDomain() repository.TransactionRecord {
	return repository.TransactionRecord{
		BuyerID:     s.BuyerID,
		ProductName: s.ProductName,
		TxID:        s.TxID,
		Currency:    s.Currency,
		Status:      repository.Status(s.Status),
	}
}

// Repository реализует TransactionRepository поверх BoltDB.
// Bolt сериализует пишущие транзакции, поэтому проверка статуса и запись атомарны.
type Repository struct {
	db *bolt.DB
}

// NewRepository открывает (или создаёт) файл базы и бакет transactions
func NewRepository(path string) (*Repository, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close снимает файловую блокировку
func (r *Repository) Close() error {
	return r.db.Close()
}

// Upsert вставляет или перезаписывает запись; created_at и completed статус сохраняются
func (r *Repository) Upsert(ctx context.Context, rec repository.TransactionRecord) error {
	if err := repository.ValidateRecord(rec); err != nil {
		return err
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		now := time.Now().UTC()

		stored := storedRecord{
			BuyerID:     rec.BuyerID,
			ProductName: rec.ProductName,
			TxID:        rec.TxID,
			Currency:    rec.Currency,
			Status:      string(rec.Status),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if existing := b.Get([]byte(rec.TxID)); existing != nil {
			var prev storedRecord
			if err := json.Unmarshal(existing, &prev); err == nil {
				stored.CreatedAt = prev.CreatedAt
				if prev.Status == string(repository.StatusCompleted) {
					stored.Status = prev.Status
				}
			}
		}

		data, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		return b.Put([]byte(rec.TxID), data)
	})
}

// UpdateStatus меняет статус только у pending записи; неизвестный txid: no-op
func (r *Repository) UpdateStatus(ctx context.Context, txid string, status repository.Status) (bool, error) {
	if !status.Valid() {
		return false, repository.ErrInvalidStatus
	}

	changed := false
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		v := b.Get([]byte(txid))
		if v == nil {
			return nil
		}

		var stored storedRecord
		if err := json.Unmarshal(v, &stored); err != nil {
			return fmt.Errorf("decode transaction %s: %w", txid, err)
		}
		if stored.Status != string(repository.StatusPending) {
			return nil
		}

		stored.Status = string(status)
		stored.UpdatedAt = time.Now().UTC()
		data, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(txid), data); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// Get возвращает запись или ErrNotFound
func (r *Repository) Get(ctx context.Context, txid string) (repository.TransactionRecord, error) {
	var stored storedRecord

	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get([]byte(txid))
		if v == nil {
			return repository.ErrNotFound
		}
		return json.Unmarshal(v, &stored)
	})
	if err != nil {
		return repository.TransactionRecord{}, err
	}
	return stored.toDomain(), nil
}

// ListByStatus обходит бакет целиком; объём: единицы тысяч записей
func (r *Repository) ListByStatus(ctx context.Context, status repository.Status) ([]repository.TransactionRecord, error) {
	var items []storedRecord

	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			var s storedRecord
			if err := json.Unmarshal(v, &s); err != nil {
				return err
			}
			if s.Status == string(status) {
				items = append(items, s)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	out := make([]repository.TransactionRecord, 0, len(items))
	for _, s := range items {
		out = append(out, s.toDomain())
	}
	return out, nil
}
