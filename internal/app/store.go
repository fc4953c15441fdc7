package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/config"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
	boltrepo "github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository/bolt"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository/memory"
	mongorepo "github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository/mongo"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository/postgres"
	redisrepo "github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository/redis"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository/sqlite"
	platformhealth "github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/health/http"
	platformshutdown "github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/shutdown"
)

const connectTimeout = 10 * time.Second

// closer регистрирует функцию освобождения ресурса (shutdown.Manager.Add)
type closer func(name string, fn func(context.Context) error)

// openTransactionStore открывает Record Store по STORE_DRIVER.
// Возвращает проверку для /health (nil для memory).
func openTransactionStore(ctx context.Context, cfg config.Config, logger *zap.Logger, onClose closer) (repository.TransactionRepository, *platformhealth.Check, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	logger.Info("Opening transaction store", zap.String("driver", cfg.StoreDriver))

	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("in-memory transaction store: pending payments are lost on restart")
		return memory.NewTransactionRepository(), nil, nil

	case config.StorePostgres:
		if err := postgres.Migrate(ctx, cfg.PostgresDSN); err != nil {
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres ping: %w", err)
		}
		onClose("postgres_pool", platformshutdown.ClosePool(pool))
		repo := postgres.NewRepository(pool)
		return repo, &platformhealth.Check{Name: "postgres", Fn: repo.Ping}, nil

	case config.StoreSQLite:
		repo, err := sqlite.NewRepository(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite open: %w", err)
		}
		onClose("sqlite", platformshutdown.Close(repo))
		return repo, &platformhealth.Check{Name: "sqlite", Fn: repo.Ping}, nil

	case config.StoreBolt:
		repo, err := boltrepo.NewRepository(cfg.BoltPath)
		if err != nil {
			return nil, nil, fmt.Errorf("bolt open: %w", err)
		}
		onClose("bolt", platformshutdown.Close(repo))
		return repo, nil, nil

	case config.StoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		repo, err := mongorepo.NewRepository(ctx, client, cfg.MongoDatabase)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("mongo init: %w", err)
		}
		onClose("mongo_client", platformshutdown.DisconnectMongo(client))
		return repo, &platformhealth.Check{Name: "mongo", Fn: repo.Ping}, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// openConversationStore открывает хранилище состояния диалога по CONVERSATION_STORE
func openConversationStore(ctx context.Context, cfg config.Config, logger *zap.Logger, onClose closer) (repository.ConversationRepository, *platformhealth.Check, error) {
	logger.Info("Opening conversation store",
		zap.String("store", cfg.ConversationStore),
		zap.Duration("ttl", cfg.ConversationTTL),
	)

	switch cfg.ConversationStore {
	case config.ConversationMemory:
		return memory.NewConversationRepository(cfg.ConversationTTL), nil, nil

	case config.ConversationRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		onClose("redis_client", platformshutdown.Close(client))
		repo := redisrepo.NewConversationRepository(client, cfg.ConversationTTL, logger)
		return repo, &platformhealth.Check{Name: "redis", Fn: repo.Ping}, nil
	}

	return nil, nil, fmt.Errorf("unknown conversation store %q", cfg.ConversationStore)
}
