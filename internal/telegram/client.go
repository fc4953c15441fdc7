package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/observability"
)

// DefaultAPIURL адрес Bot API
const DefaultAPIURL = "https://api.telegram.org"

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Sender --dir=. --output=./mocks --outpkg=mocks

// Sender определяет интерфейс для исходящих сообщений
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, reply Reply) error
	EditMessage(ctx context.Context, chatID, messageID int64, reply Reply) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// Updater получает входящие события long polling'ом
type Updater interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
}

// Client реализует Sender и Updater через Telegram Bot API
type Client struct {
	logger *zap.Logger
	apiURL string
	client *http.Client
}

// NewClient создаёт клиент Bot API; apiURL пустой: api.telegram.org
func NewClient(logger *zap.Logger, botToken, apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		logger: logger,
		apiURL: strings.TrimRight(apiURL, "/") + "/bot" + botToken,
		client: &http.Client{
			// long polling держит соединение до timeout getUpdates, запас сверху
			Timeout:   90 * time.Second,
			Transport: observability.Transport("telegram-client", nil),
		},
	}
}

// SendMessage отправляет сообщение в чат
func (c *Client) SendMessage(ctx context.Context, chatID int64, reply Reply) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    reply.Text,
	}
	applyReply(payload, reply)

	if err := c.call(ctx, "sendMessage", payload, nil); err != nil {
		return err
	}

	c.logger.Debug("telegram message sent",
		zap.Int64("chat_id", chatID),
		zap.String("text_preview", truncate(reply.Text, 50)),
	)
	return nil
}

// EditMessage заменяет текст и клавиатуру ранее отправленного сообщения
func (c *Client) EditMessage(ctx context.Context, chatID, messageID int64, reply Reply) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       reply.Text,
	}
	applyReply(payload, reply)

	if err := c.call(ctx, "editMessageText", payload, nil); err != nil {
		return err
	}

	c.logger.Debug("telegram message edited",
		zap.Int64("chat_id", chatID),
		zap.Int64("message_id", messageID),
	)
	return nil
}

// AnswerCallback снимает "часики" с нажатой кнопки
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": callbackID}, nil)
}

// GetUpdates long polling; offset: следующий ожидаемый update_id
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query"},
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SetWebhook регистрирует URL вебхука и секрет для заголовка X-Telegram-Bot-Api-Secret-Token
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	payload := map[string]any{
		"url":             url,
		"allowed_updates": []string{"message", "callback_query"},
	}
	if secret != "" {
		payload["secret_token"] = secret
	}
	return c.call(ctx, "setWebhook", payload, nil)
}

// DeleteWebhook снимает вебхук; без этого getUpdates возвращает 409
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", map[string]any{}, nil)
}

// call выполняет метод Bot API и декодирует result в out (если out != nil)
func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/"+method, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &APIError{Method: method, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Method: method, StatusCode: resp.StatusCode, Err: err}
	}

	// Телеграм отвечает {"ok": true, "result": ...} или {"ok": false, "description": "..."}
	var result apiResponse[json.RawMessage]
	if err := json.Unmarshal(body, &result); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &APIError{Method: method, StatusCode: resp.StatusCode, Description: truncate(strings.TrimSpace(string(body)), 200)}
		}
		return &APIError{Method: method, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !result.OK || resp.StatusCode != http.StatusOK {
		return &APIError{Method: method, StatusCode: resp.StatusCode, Description: result.Description}
	}

	if out != nil && len(result.Result) > 0 {
		if err := json.Unmarshal(result.Result, out); err != nil {
			return &APIError{Method: method, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode result: %w", err)}
		}
	}
	return nil
}

func applyReply(payload map[string]any, reply Reply) {
	if reply.ParseMode != "" {
		payload["parse_mode"] = reply.ParseMode
	}
	if len(reply.Keyboard) > 0 {
		payload["reply_markup"] = inlineKeyboardMarkup{InlineKeyboard: reply.Keyboard}
	}
}

// NoOpSender - no-op реализация Sender (для локального запуска без бота)
type NoOpSender struct {
	logger *zap.Logger
}

// NewNoOpSender создаёт no-op sender
func NewNoOpSender(logger *zap.Logger) *NoOpSender {
	return &NoOpSender{
		logger: logger,
	}
}

// SendMessage ничего не делает, только логирует
func (s *NoOpSender) SendMessage(ctx context.Context, chatID int64, reply Reply) error {
	s.logger.Debug("no-op sender: message not sent",
		zap.Int64("chat_id", chatID),
		zap.String("text_preview", truncate(reply.Text, 50)),
	)
	return nil
}

// EditMessage ничего не делает, только логирует
func (s *NoOpSender) EditMessage(ctx context.Context, chatID, messageID int64, reply Reply) error {
	s.logger.Debug("no-op sender: message not edited",
		zap.Int64("chat_id", chatID),
		zap.Int64("message_id", messageID),
	)
	return nil
}

// AnswerCallback ничего не делает
func (s *NoOpSender) AnswerCallback(ctx context.Context, callbackID string) error {
	return nil
}

// truncate обрезает строку до maxLen символов, не разрывая UTF-8
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
