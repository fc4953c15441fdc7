//go:build integration

package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository/repotest"
)

func TestRepository_Integration(t *testing.T) {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	defer func() {
		require.NoError(t, testcontainers.TerminateContainer(mongoContainer))
	}()

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(ctx) }()

	repo, err := NewRepository(ctx, client, "shop_test")
	require.NoError(t, err)
	require.NoError(t, repo.Ping(ctx))

	// Индексы создаются идемпотентно
	_, err = NewRepository(ctx, client, "shop_test")
	require.NoError(t, err)

	repotest.TransactionRepositorySuite(t, func(t *testing.T) repository.TransactionRepository {
		_, err := client.Database("shop_test").Collection(collectionName).DeleteMany(ctx, bson.M{})
		require.NoError(t, err)
		return repo
	})
}
