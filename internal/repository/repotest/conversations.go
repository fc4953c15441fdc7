package repotest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
)

// ConversationRepositorySuite проверяет контракт хранилища диалогов
func ConversationRepositorySuite(t *testing.T, newRepo func(t *testing.T) repository.ConversationRepository) {
	ctx := context.Background()

	pending := repository.Conversation{
		BuyerID:       7,
		ChatID:        70,
		State:         repository.StateAwaitingContactInfo,
		ProductName:   "Widget_Pro",
		VariantID:     "11",
		PaymentMethod: "BTC",
	}

	t.Run("Get unknown returns ErrConversationNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(ctx, 1)
		assert.ErrorIs(t, err, repository.ErrConversationNotFound)
	})

	t.Run("Save then Get", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, pending))

		got, err := repo.Get(ctx, pending.BuyerID)
		require.NoError(t, err)
		assert.Equal(t, pending.ChatID, got.ChatID)
		assert.Equal(t, pending.State, got.State)
		assert.Equal(t, pending.ProductName, got.ProductName)
		assert.Equal(t, pending.VariantID, got.VariantID)
		assert.Equal(t, pending.PaymentMethod, got.PaymentMethod)
		assert.True(t, got.HasPendingPurchase())
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("Save replaces previous conversation", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, pending))
		require.NoError(t, repo.Save(ctx, repository.Conversation{
			BuyerID: pending.BuyerID,
			ChatID:  pending.ChatID,
			State:   repository.StateAwaitingProductChoice,
		}))

		got, err := repo.Get(ctx, pending.BuyerID)
		require.NoError(t, err)
		assert.Equal(t, repository.StateAwaitingProductChoice, got.State)
		assert.Empty(t, got.ProductName)
		assert.Empty(t, got.PaymentMethod)
	})

	t.Run("Take consumes the conversation", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, pending))

		got, err := repo.Take(ctx, pending.BuyerID)
		require.NoError(t, err)
		assert.Equal(t, pending.ProductName, got.ProductName)

		_, err = repo.Take(ctx, pending.BuyerID)
		assert.ErrorIs(t, err, repository.ErrConversationNotFound)
		_, err = repo.Get(ctx, pending.BuyerID)
		assert.ErrorIs(t, err, repository.ErrConversationNotFound)
	})

	t.Run("concurrent Take succeeds once", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, pending))

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := repo.Take(ctx, pending.BuyerID); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("Delete missing is a no-op", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Delete(ctx, 999))
	})

	t.Run("Delete removes conversation", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, pending))
		require.NoError(t, repo.Delete(ctx, pending.BuyerID))
		_, err := repo.Get(ctx, pending.BuyerID)
		assert.ErrorIs(t, err, repository.ErrConversationNotFound)
	})
}
