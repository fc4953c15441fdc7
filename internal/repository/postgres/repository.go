package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
)

// Repository реализует TransactionRepository используя PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый PostgreSQL репозиторий
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
	}
}

// Upsert вставляет запись или перезаписывает существующую с тем же txid.
// Статус completed не откатывается.
func (r *Repository) Upsert(ctx context.Context, rec repository.TransactionRecord) error {
	if err := repository.ValidateRecord(rec); err != nil {
		return err
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO transactions (txid, user_id, product, currency, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (txid) DO UPDATE SET
		   user_id = EXCLUDED.user_id,
		   product = EXCLUDED.product,
		   currency = EXCLUDED.currency,
		   status = CASE WHEN transactions.status = 'completed' THEN transactions.status ELSE EXCLUDED.status END,
		   updated_at = now()`,
		rec.TxID, rec.BuyerID, rec.ProductName, rec.Currency, string(rec.Status))
	if err != nil {
		return fmt.Errorf("upsert transaction %s: %w", rec.TxID, err)
	}
	return nil
}

// UpdateStatus меняет статус только у pending записи; 0 затронутых строк: (false, nil)
func (r *Repository) UpdateStatus(ctx context.Context, txid string, status repository.Status) (bool, error) {
	if !status.Valid() {
		return false, repository.ErrInvalidStatus
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET status = $1, updated_at = now()
		 WHERE txid = $2 AND status = $3`,
		string(status), txid, string(repository.StatusPending))
	if err != nil {
		return false, fmt.Errorf("update transaction %s status: %w", txid, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Get получает запись по txid
func (r *Repository) Get(ctx context.Context, txid string) (repository.TransactionRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT user_id, product, txid, currency, status
		 FROM transactions
		 WHERE txid = $1`,
		txid)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.TransactionRecord{}, repository.ErrNotFound
		}
		return repository.TransactionRecord{}, err
	}
	return rec, nil
}

// ListByStatus возвращает записи со статусом в порядке создания
func (r *Repository) ListByStatus(ctx context.Context, status repository.Status) ([]repository.TransactionRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, product, txid, currency, status
		 FROM transactions
		 WHERE status = $1
		 ORDER BY created_at, txid`,
		string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]repository.TransactionRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Ping для readiness
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanRecord(row pgx.Row) (repository.TransactionRecord, error) {
	var rec repository.TransactionRecord
	var status string
	if err := row.Scan(&rec.BuyerID, &rec.ProductName, &rec.TxID, &rec.Currency, &status); err != nil {
		return repository.TransactionRecord{}, err
	}
	rec.Status = repository.Status(status)
	return rec, nil
}
