package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
)

const (
	hashFieldChatID        = "chat_id"
	hashFieldState         = "state"
	hashFieldProduct       = "product"
	hashFieldVariantID     = "variant_id"
	hashFieldPaymentMethod = "payment_method"
	hashFieldUpdatedAt     = "updated_at"
)

// ConversationRepository хранит диалоги в Redis hash с TTL.
// Переживает рестарт процесса и позволяет запускать несколько реплик.
type ConversationRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewConversationRepository создаёт репозиторий; ttl <= 0: без истечения
func NewConversationRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ConversationRepository {
	return &ConversationRepository{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func conversationKey(buyerID int64) string {
	return fmt.Sprintf("conversation:%d", buyerID)
}

// Get читает hash диалога
func (r *ConversationRepository) Get(ctx context.Context, buyerID int64) (repository.Conversation, error) {
	fields, err := r.client.HGetAll(ctx, conversationKey(buyerID)).Result()
	if err != nil {
		r.logger.Error("failed to get conversation hash from redis",
			zap.Error(err),
			zap.Int64("buyer_id", buyerID),
		)
		return repository.Conversation{}, fmt.Errorf("failed to get conversation: %w", err)
	}
	return decodeConversation(buyerID, fields)
}

// Save перезаписывает hash целиком и выставляет TTL
func (r *ConversationRepository) Save(ctx context.Context, conv repository.Conversation) error {
	key := conversationKey(conv.BuyerID)
	now := time.Now().UTC()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		// DEL перед HSET, чтобы не оставить поля предыдущего состояния
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			hashFieldChatID, conv.ChatID,
			hashFieldState, string(conv.State),
			hashFieldProduct, conv.ProductName,
			hashFieldVariantID, conv.VariantID,
			hashFieldPaymentMethod, conv.PaymentMethod,
			hashFieldUpdatedAt, now.Format(time.RFC3339Nano),
		)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to save conversation hash in redis",
			zap.Error(err),
			zap.Int64("buyer_id", conv.BuyerID),
		)
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	r.logger.Debug("conversation hash saved",
		zap.Int64("buyer_id", conv.BuyerID),
		zap.String("state", string(conv.State)),
		zap.Duration("ttl", r.ttl),
	)
	return nil
}

// Take читает и удаляет hash в одном MULTI/EXEC.
// Второй конкурентный Take увидит пустой hash и получит ErrConversationNotFound.
func (r *ConversationRepository) Take(ctx context.Context, buyerID int64) (repository.Conversation, error) {
	key := conversationKey(buyerID)

	var getCmd *redis.MapStringStringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		getCmd = pipe.HGetAll(ctx, key)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to take conversation hash from redis",
			zap.Error(err),
			zap.Int64("buyer_id", buyerID),
		)
		return repository.Conversation{}, fmt.Errorf("failed to take conversation: %w", err)
	}
	return decodeConversation(buyerID, getCmd.Val())
}

// Delete удаляет hash диалога
func (r *ConversationRepository) Delete(ctx context.Context, buyerID int64) error {
	if err := r.client.Del(ctx, conversationKey(buyerID)).Err(); err != nil {
		r.logger.Error("failed to delete conversation hash from redis",
			zap.Error(err),
			zap.Int64("buyer_id", buyerID),
		)
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// Ping для readiness
func (r *ConversationRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func decodeConversation(buyerID int64, fields map[string]string) (repository.Conversation, error) {
	if len(fields) == 0 || fields[hashFieldState] == "" {
		return repository.Conversation{}, repository.ErrConversationNotFound
	}

	conv := repository.Conversation{
		BuyerID:       buyerID,
		State:         repository.State(fields[hashFieldState]),
		ProductName:   fields[hashFieldProduct],
		VariantID:     fields[hashFieldVariantID],
		PaymentMethod: fields[hashFieldPaymentMethod],
	}

	if v := fields[hashFieldChatID]; v != "" {
		chatID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return repository.Conversation{}, fmt.Errorf("decode chat_id %q: %w", v, err)
		}
		conv.ChatID = chatID
	}
	if v := fields[hashFieldUpdatedAt]; v != "" {
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return repository.Conversation{}, fmt.Errorf("decode updated_at %q: %w", v, err)
		}
		conv.UpdatedAt = ts
	}
	return conv, nil
}
