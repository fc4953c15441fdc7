package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/api/http/middleware"
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/telegram"
	platformhealth "github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/health/http"
)

type fakeQueue struct {
	mu      sync.Mutex
	updates []telegram.Update
	err     error
}

func (q *fakeQueue) Enqueue(ctx context.Context, u telegram.Update) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.updates = append(q.updates, u)
	return nil
}

const updateJSON = `{"update_id":42,"message":{"message_id":1,"from":{"id":7,"is_bot":false},"chat":{"id":7,"type":"private"},"text":"/start"}}`

func post(router http.Handler, body, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(middleware.SecretTokenHeader, secret)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_EnqueuesUpdate(t *testing.T) {
	queue := &fakeQueue{}
	router := NewRouter(zap.NewNop(), NewWebhookHandler(zap.NewNop(), queue), "s3cret")

	rec := post(router, updateJSON, "s3cret")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, queue.updates, 1)
	assert.Equal(t, int64(42), queue.updates[0].UpdateID)
	assert.Equal(t, "/start", queue.updates[0].Message.Text)
	assert.Equal(t, int64(7), queue.updates[0].Message.From.ID)
}

func TestWebhook_RejectsWrongSecret(t *testing.T) {
	queue := &fakeQueue{}
	router := NewRouter(zap.NewNop(), NewWebhookHandler(zap.NewNop(), queue), "s3cret")

	assert.Equal(t, http.StatusUnauthorized, post(router, updateJSON, "").Code)
	assert.Equal(t, http.StatusUnauthorized, post(router, updateJSON, "guess").Code)
	assert.Empty(t, queue.updates)
}

func TestWebhook_NoSecretConfigured(t *testing.T) {
	queue := &fakeQueue{}
	router := NewRouter(zap.NewNop(), NewWebhookHandler(zap.NewNop(), queue), "")

	assert.Equal(t, http.StatusOK, post(router, updateJSON, "").Code)
	assert.Len(t, queue.updates, 1)
}

func TestWebhook_BadPayload(t *testing.T) {
	router := NewRouter(zap.NewNop(), NewWebhookHandler(zap.NewNop(), &fakeQueue{}), "")

	assert.Equal(t, http.StatusBadRequest, post(router, "{not json", "").Code)
}

func TestWebhook_QueueUnavailable(t *testing.T) {
	queue := &fakeQueue{err: errors.New("update loop stopped")}
	router := NewRouter(zap.NewNop(), NewWebhookHandler(zap.NewNop(), queue), "")

	assert.Equal(t, http.StatusServiceUnavailable, post(router, updateJSON, "").Code)
}

func TestRouter_PollingModeHasNoWebhook(t *testing.T) {
	router := NewRouter(nil, nil, "")

	rec := post(router, updateJSON, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	healthy := NewRouter(nil, nil, "", platformhealth.Check{Name: "store", Fn: func(context.Context) error { return nil }})
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	broken := NewRouter(nil, nil, "", platformhealth.Check{Name: "store", Fn: func(context.Context) error { return errors.New("down") }})
	rec = httptest.NewRecorder()
	broken.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
