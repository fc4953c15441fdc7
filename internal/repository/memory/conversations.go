package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/repository"
)

// ConversationRepository хранит диалоги в памяти с TTL.
// Протухшие записи вычищаются лениво при каждой записи.
type ConversationRepository struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[int64]entry
}

type entry struct {
	conv      repository.Conversation
	expiresAt time.Time
}

// NewConversationRepository создаёт репозиторий; ttl <= 0: без истечения
func NewConversationRepository(ttl time.Duration) *ConversationRepository {
	return &ConversationRepository{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[int64]entry),
	}
}

// Get возвращает живой диалог покупателя
func (r *ConversationRepository) Get(ctx context.Context, buyerID int64) (repository.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.getLocked(buyerID)
}

// Save перезаписывает диалог и продлевает TTL
func (r *ConversationRepository) Save(ctx context.Context, conv repository.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cleanupExpiredLocked()

	now := r.now()
	conv.UpdatedAt = now
	e := entry{conv: conv}
	if r.ttl > 0 {
		e.expiresAt = now.Add(r.ttl)
	}
	r.items[conv.BuyerID] = e
	return nil
}

// Take читает и удаляет диалог под одним локом
func (r *ConversationRepository) Take(ctx context.Context, buyerID int64) (repository.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, err := r.getLocked(buyerID)
	if err != nil {
		return repository.Conversation{}, err
	}
	delete(r.items, buyerID)
	return conv, nil
}

// Delete удаляет диалог
func (r *ConversationRepository) Delete(ctx context.Context, buyerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, buyerID)
	return nil
}

// Len количество хранимых диалогов (включая ещё не вычищенные протухшие)
func (r *ConversationRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *ConversationRepository) getLocked(buyerID int64) (repository.Conversation, error) {
	e, ok := r.items[buyerID]
	if !ok {
		return repository.Conversation{}, repository.ErrConversationNotFound
	}
	if r.expired(e) {
		delete(r.items, buyerID)
		return repository.Conversation{}, repository.ErrConversationNotFound
	}
	return e.conv, nil
}

func (r *ConversationRepository) expired(e entry) bool {
	return !e.expiresAt.IsZero() && r.now().After(e.expiresAt)
}

// cleanupExpiredLocked вызывается с захваченным mu
func (r *ConversationRepository) cleanupExpiredLocked() {
	for id, e := range r.items {
		if r.expired(e) {
			delete(r.items, id)
		}
	}
}
