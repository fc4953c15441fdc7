package httpapi

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/api/http/middleware"
	platformhealth "github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/health/http"
	platformobservability "github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/observability"
)

// NewRouter создаёт HTTP роутер бота.
// webhook nil: режим long polling, маршрут /webhook не регистрируется.
// checks: проверки хранилищ для /health (503, если хотя бы одна упала).
func NewRouter(logger *zap.Logger, webhook *WebhookHandler, secret string, checks ...platformhealth.Check) chi.Router {
	router := chi.NewRouter()

	// Observability: span на каждый запрос, logger с trace_id в контексте
	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("sellbot", logger))
	}

	if webhook != nil {
		router.With(middleware.WithSecretToken(secret)).Post("/webhook", webhook.ServeHTTP)
	}

	router.Get("/health", platformhealth.Handler(checks...))

	return router
}
