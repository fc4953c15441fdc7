package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/telegram"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/observability"
)

// maxUpdateBytes ограничение тела апдейта
const maxUpdateBytes = 1 << 20

// UpdateQueue принимает апдейты в цикл обработки (updates.Loop)
type UpdateQueue interface {
	Enqueue(ctx context.Context, u telegram.Update) error
}

// WebhookHandler обрабатывает POST /webhook от Telegram.
// Апдейт только ставится в очередь, обработка идёт в едином цикле.
type WebhookHandler struct {
	logger *zap.Logger
	queue  UpdateQueue
}

// NewWebhookHandler создаёт обработчик webhook
func NewWebhookHandler(logger *zap.Logger, queue UpdateQueue) *WebhookHandler {
	return &WebhookHandler{
		logger: logger,
		queue:  queue,
	}
}

// ServeHTTP декодирует Update и кладёт его в очередь.
// 200 без тела: Telegram считает апдейт доставленным.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context(), h.logger)

	var u telegram.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&u); err != nil {
		logger.Warn("invalid webhook payload", zap.Error(err))
		http.Error(w, "invalid update", http.StatusBadRequest)
		return
	}

	if err := h.queue.Enqueue(r.Context(), u); err != nil {
		// 503: Telegram повторит доставку позже
		logger.Error("failed to enqueue update", zap.Error(err), zap.Int64("update_id", u.UpdateID))
		http.Error(w, "update loop unavailable", http.StatusServiceUnavailable)
		return
	}

	logger.Debug("webhook update accepted", zap.Int64("update_id", u.UpdateID))
	w.WriteHeader(http.StatusOK)
}
