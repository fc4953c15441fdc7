// Package repotest содержит общий набор проверок контракта TransactionRepository,
// который прогоняется для каждой реализации хранилища.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
)

// TransactionRepositorySuite проверяет контракт хранилища.
// newRepo должен возвращать пустое хранилище для каждого подтеста.
func TransactionRepositorySuite(t *testing.T, newRepo func(t *testing.T) repository.TransactionRepository) {
	ctx := context.Background()

	t.Run("Upsert and Get return identical fields", func(t *testing.T) {
		repo := newRepo(t)
		rec := repository.TransactionRecord{
			BuyerID:     123456789,
			ProductName: "Widget_Pro",
			TxID:        "tx-roundtrip",
			Currency:    "BTC",
			Status:      repository.StatusPending,
		}
		require.NoError(t, repo.Upsert(ctx, rec))

		got, err := repo.Get(ctx, rec.TxID)
		require.NoError(t, err)
		assert.Equal(t, rec, got)
	})

	t.Run("Get unknown returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("Upsert overwrites by txid", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Upsert(ctx, repository.TransactionRecord{BuyerID: 1, ProductName: "A", TxID: "tx-1", Currency: "BTC", Status: repository.StatusPending}))
		require.NoError(t, repo.Upsert(ctx, repository.TransactionRecord{BuyerID: 2, ProductName: "B", TxID: "tx-1", Currency: "LTC", Status: repository.StatusPending}))

		got, err := repo.Get(ctx, "tx-1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.BuyerID)
		assert.Equal(t, "B", got.ProductName)
		assert.Equal(t, "LTC", got.Currency)
	})

	t.Run("UpdateStatus unknown txid is a no-op", func(t *testing.T) {
		repo := newRepo(t)
		changed, err := repo.UpdateStatus(ctx, "missing", repository.StatusCompleted)
		require.NoError(t, err)
		assert.False(t, changed)
		_, err = repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("status only moves pending to completed", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Upsert(ctx, repository.TransactionRecord{BuyerID: 1, ProductName: "A", TxID: "tx-2", Currency: "BTC", Status: repository.StatusPending}))

		changed, err := repo.UpdateStatus(ctx, "tx-2", repository.StatusCompleted)
		require.NoError(t, err)
		assert.True(t, changed)
		got, err := repo.Get(ctx, "tx-2")
		require.NoError(t, err)
		assert.Equal(t, repository.StatusCompleted, got.Status)

		changed, err = repo.UpdateStatus(ctx, "tx-2", repository.StatusPending)
		require.NoError(t, err)
		assert.False(t, changed)
		got, err = repo.Get(ctx, "tx-2")
		require.NoError(t, err)
		assert.Equal(t, repository.StatusCompleted, got.Status)

		// Второй перевод в completed ничего не меняет: уведомление уже ушло
		changed, err = repo.UpdateStatus(ctx, "tx-2", repository.StatusCompleted)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("Upsert does not revert completed", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Upsert(ctx, repository.TransactionRecord{BuyerID: 1, ProductName: "A", TxID: "tx-4", Currency: "BTC", Status: repository.StatusPending}))
		changed, err := repo.UpdateStatus(ctx, "tx-4", repository.StatusCompleted)
		require.NoError(t, err)
		require.True(t, changed)

		require.NoError(t, repo.Upsert(ctx, repository.TransactionRecord{BuyerID: 2, ProductName: "B_2", TxID: "tx-4", Currency: "LTC", Status: repository.StatusPending}))

		got, err := repo.Get(ctx, "tx-4")
		require.NoError(t, err)
		assert.Equal(t, repository.TransactionRecord{BuyerID: 2, ProductName: "B_2", TxID: "tx-4", Currency: "LTC", Status: repository.StatusCompleted}, got)

		pending, err := repo.ListByStatus(ctx, repository.StatusPending)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("Upsert may move pending to completed", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Upsert(ctx, repository.TransactionRecord{BuyerID: 1, ProductName: "A", TxID: "tx-5", Currency: "BTC", Status: repository.StatusPending}))
		require.NoError(t, repo.Upsert(ctx, repository.TransactionRecord{BuyerID: 1, ProductName: "A", TxID: "tx-5", Currency: "BTC", Status: repository.StatusCompleted}))

		got, err := repo.Get(ctx, "tx-5")
		require.NoError(t, err)
		assert.Equal(t, repository.StatusCompleted, got.Status)
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Upsert(ctx, repository.TransactionRecord{TxID: "tx-3", Status: "refunded"})
		assert.ErrorIs(t, err, repository.ErrInvalidStatus)
		_, err = repo.UpdateStatus(ctx, "tx-3", "refunded")
		assert.ErrorIs(t, err, repository.ErrInvalidStatus)
	})

	t.Run("ListByStatus filters", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Upsert(ctx, repository.TransactionRecord{BuyerID: 1, ProductName: "A", TxID: "tx-p1", Currency: "BTC", Status: repository.StatusPending}))
		require.NoError(t, repo.Upsert(ctx, repository.TransactionRecord{BuyerID: 2, ProductName: "A", TxID: "tx-p2", Currency: "BTC", Status: repository.StatusPending}))
		require.NoError(t, repo.Upsert(ctx, repository.TransactionRecord{BuyerID: 3, ProductName: "A", TxID: "tx-c1", Currency: "BTC", Status: repository.StatusCompleted}))

		pending, err := repo.ListByStatus(ctx, repository.StatusPending)
		require.NoError(t, err)
		ids := make([]string, 0, len(pending))
		for _, rec := range pending {
			ids = append(ids, rec.TxID)
		}
		assert.ElementsMatch(t, []string{"tx-p1", "tx-p2"}, ids)

		completed, err := repo.ListByStatus(ctx, repository.StatusCompleted)
		require.NoError(t, err)
		require.Len(t, completed, 1)
		assert.Equal(t, "tx-c1", completed[0].TxID)
	})

	t.Run("concurrent writes to distinct txids", func(t *testing.T) {
		repo := newRepo(t)
		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				txid := fmt.Sprintf("tx-c-%d", i)
				if err := repo.Upsert(ctx, repository.TransactionRecord{BuyerID: int64(i), ProductName: "A", TxID: txid, Currency: "BTC", Status: repository.StatusPending}); err != nil {
					errs <- err
					return
				}
				if _, err := repo.UpdateStatus(ctx, txid, repository.StatusCompleted); err != nil {
					errs <- err
				}
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		completed, err := repo.ListByStatus(ctx, repository.StatusCompleted)
		require.NoError(t, err)
		assert.Len(t, completed, 20)
	})
}
