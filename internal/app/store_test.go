package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/config"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository/memory"
)

type closers struct {
	names []string
	fns   []func(context.Context) error
}

func (c *closers) add(name string, fn func(context.Context) error) {
	c.names = append(c.names, name)
	c.fns = append(c.fns, fn)
}

func (c *closers) closeAll(t *testing.T) {
	t.Helper()
	for _, fn := range c.fns {
		require.NoError(t, fn(context.Background()))
	}
}

func TestOpenTransactionStore_FileBackends(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		driver     string
		wantCloser string
		wantCheck  bool
	}{
		{driver: config.StoreSQLite, wantCloser: "sqlite", wantCheck: true},
		{driver: config.StoreBolt, wantCloser: "bolt", wantCheck: false},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg := config.Config{
				StoreDriver: tt.driver,
				SQLitePath:  filepath.Join(dir, "tx.db"),
				BoltPath:    filepath.Join(dir, "tx.bolt"),
			}
			c := &closers{}

			repo, check, err := openTransactionStore(context.Background(), cfg, zap.NewNop(), c.add)
			require.NoError(t, err)
			defer c.closeAll(t)

			assert.Equal(t, []string{tt.wantCloser}, c.names)
			assert.Equal(t, tt.wantCheck, check != nil)
			if check != nil {
				assert.NoError(t, check.Fn(context.Background()))
			}

			ctx := context.Background()
			require.NoError(t, repo.Upsert(ctx, repository.TransactionRecord{
				BuyerID: 1, ProductName: "Key", TxID: "tx", Currency: "BTC", Status: repository.StatusPending,
			}))
			got, err := repo.Get(ctx, "tx")
			require.NoError(t, err)
			assert.Equal(t, "Key", got.ProductName)
		})
	}
}

func TestOpenTransactionStore_Memory(t *testing.T) {
	c := &closers{}
	repo, check, err := openTransactionStore(context.Background(), config.Config{StoreDriver: config.StoreMemory}, zap.NewNop(), c.add)
	require.NoError(t, err)

	assert.IsType(t, &memory.TransactionRepository{}, repo)
	assert.Nil(t, check)
	assert.Empty(t, c.names)
}

func TestOpenTransactionStore_UnknownDriver(t *testing.T) {
	_, _, err := openTransactionStore(context.Background(), config.Config{StoreDriver: "etcd"}, zap.NewNop(), (&closers{}).add)
	assert.Error(t, err)
}

func TestOpenConversationStore_Memory(t *testing.T) {
	c := &closers{}
	repo, check, err := openConversationStore(context.Background(),
		config.Config{ConversationStore: config.ConversationMemory, ConversationTTL: time.Hour}, zap.NewNop(), c.add)
	require.NoError(t, err)

	assert.IsType(t, &memory.ConversationRepository{}, repo)
	assert.Nil(t, check)
}
