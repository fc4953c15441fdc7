// Package sqlite хранит покупки во встроенной SQLite (modernc, без cgo).
// Один файл на диске, внешний процесс БД не нужен.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
)

// Repository реализует TransactionRepository поверх SQLite
type Repository struct {
	db *sql.DB
}

// NewRepository открывает (или создаёт) базу по пути dsn и накатывает схему
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// SQLite допускает одного писателя; одно соединение снимает SQLITE_BUSY
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", pragma, err)
		}
	}

	r := &Repository{db: db}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return r, nil
}

// Close закрывает файл базы
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping для readiness
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS transactions(
			txid TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			product TEXT NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('pending', 'completed')),
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		);

		CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status);
	`
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Upsert вставляет запись или перезаписывает существующую с тем же txid.
// Статус completed не откатывается.
func (r *Repository) Upsert(ctx context.Context, rec repository.TransactionRecord) error {
	if err := repository.ValidateRecord(rec); err != nil {
		return err
	}

	q := `
		INSERT INTO transactions(txid, user_id, product, currency, status)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(txid) DO UPDATE SET
			user_id = excluded.user_id,
			product = excluded.product,
			currency = excluded.currency,
			status = CASE WHEN transactions.status = 'completed' THEN transactions.status ELSE excluded.status END,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now');
	`
	_, err := r.db.ExecContext(ctx, q, rec.TxID, rec.BuyerID, rec.ProductName, rec.Currency, string(rec.Status))
	if err != nil {
		return fmt.Errorf("upsert transaction %s: %w", rec.TxID, err)
	}
	return nil
}

// UpdateStatus меняет статус только у pending записи
func (r *Repository) UpdateStatus(ctx context.Context, txid string, status repository.Status) (bool, error) {
	if !status.Valid() {
		return false, repository.ErrInvalidStatus
	}

	q := `
		UPDATE transactions
		SET status = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE txid = ? AND status = ?;
	`
	res, err := r.db.ExecContext(ctx, q, string(status), txid, string(repository.StatusPending))
	if err != nil {
		return false, fmt.Errorf("update transaction %s status: %w", txid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update transaction %s status: %w", txid, err)
	}
	return n > 0, nil
}

// Get возвращает запись по txid
func (r *Repository) Get(ctx context.Context, txid string) (repository.TransactionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, product, txid, currency, status FROM transactions WHERE txid = ?;`,
		txid)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.TransactionRecord{}, repository.ErrNotFound
		}
		return repository.TransactionRecord{}, err
	}
	return rec, nil
}

// ListByStatus возвращает записи со статусом в порядке создания
func (r *Repository) ListByStatus(ctx context.Context, status repository.Status) ([]repository.TransactionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, product, txid, currency, status
		 FROM transactions
		 WHERE status = ?
		 ORDER BY created_at, txid;`,
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

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (repository.TransactionRecord, error) {
	var rec repository.TransactionRecord
	var status string
	if err := row.Scan(&rec.BuyerID, &rec.ProductName, &rec.TxID, &rec.Currency, &status); err != nil {
		return repository.TransactionRecord{}, err
	}
	rec.Status = repository.Status(status)
	return rec, nil
}
