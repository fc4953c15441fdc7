//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository/repotest"
)

func TestRepository_Integration(t *testing.T) {
	ctx := context.Background()

	// Поднимаем PostgreSQL контейнер
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("shop"),
		postgres.WithUsername("shop_user"),
		postgres.WithPassword("shop_password"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, testcontainers.TerminateContainer(pgContainer))
	}()

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Миграции встроены в бинарь, путь к каталогу не нужен
	require.NoError(t, Migrate(ctx, dsn))
	// Повторный прогон не должен падать
	require.NoError(t, Migrate(ctx, dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool)
	require.NoError(t, repo.Ping(ctx))

	repotest.TransactionRepositorySuite(t, func(t *testing.T) repository.TransactionRepository {
		_, err := pool.Exec(ctx, "TRUNCATE transactions")
		require.NoError(t, err)
		return repo
	})
}
