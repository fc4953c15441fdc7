package sellauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/platform/observability"
)

// DefaultBaseURL публичный API SellAuth
const DefaultBaseURL = "https://api.sellauth.com/v1"

// maxErrorBody сколько байт тела ответа сохранять в GatewayError.
// Обрезанный на границе лимита символ отбрасывается.
const maxErrorBody = 512

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Gateway --dir=. --output=./mocks --outpkg=mocks

// Gateway определяет интерфейс для работы с SellAuth.
// Клиент не делает ретраев: политика повторов живёт в поллере.
type Gateway interface {
	// ListProducts возвращает каталог магазина
	ListProducts(ctx context.Context) ([]Product, error)
	// CreateCheckout создаёт счёт на оплату
	CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error)
	// IsTransactionConfirmed сообщает, набрала ли транзакция нужное число подтверждений
	IsTransactionConfirmed(ctx context.Context, txid string) (bool, error)
}

// Config параметры клиента
type Config struct {
	BaseURL          string
	APIKey           string
	ShopID           string
	MinConfirmations int
	Timeout          time.Duration
}

// Client реализует Gateway через HTTP API SellAuth
type Client struct {
	logger           *zap.Logger
	baseURL          string
	apiKey           string
	shopID           string
	minConfirmations int
	client           *http.Client
}

// NewClient создаёт клиент SellAuth. Исходящие запросы идут через tracing transport.
func NewClient(logger *zap.Logger, cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	minConf := cfg.MinConfirmations
	if minConf < 1 {
		minConf = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		logger:           logger,
		baseURL:          baseURL,
		apiKey:           cfg.APIKey,
		shopID:           cfg.ShopID,
		minConfirmations: minConf,
		client: &http.Client{
			Timeout:   timeout,
			Transport: observability.Transport("sellauth-client", nil),
		},
	}
}

// ListProducts GET /shops/{shop}/products
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var resp listResponse[Product]
	if err := c.do(ctx, "list products", http.MethodGet, "/products", nil, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("sellauth products fetched", zap.Int("count", len(resp.Data)))
	if resp.Data == nil {
		return []Product{}, nil
	}
	return resp.Data, nil
}

// CreateCheckout POST /shops/{shop}/checkout
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error) {
	productID, err := req.ProductID.Int()
	if err != nil {
		return Checkout{}, &GatewayError{Op: "create checkout", Err: fmt.Errorf("product id %q is not numeric", req.ProductID)}
	}
	variantID, err := req.VariantID.Int()
	if err != nil {
		return Checkout{}, &GatewayError{Op: "create checkout", Err: fmt.Errorf("variant id %q is not numeric", req.VariantID)}
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	body := checkoutBody{
		Cart: []CartItem{{
			ProductID:    productID,
			VariantID:    variantID,
			Quantity:     quantity,
			CustomFields: req.CustomFields,
		}},
		Gateway: req.PaymentMethod,
		Email:   req.Email,
	}

	var resp checkoutResponse
	if err := c.do(ctx, "create checkout", http.MethodPost, "/checkout", body, &resp); err != nil {
		return Checkout{}, err
	}

	checkout := resp.toCheckout()
	c.logger.Info("sellauth checkout created",
		zap.Int64("product_id", productID),
		zap.Int64("variant_id", variantID),
		zap.String("gateway", req.PaymentMethod),
		zap.String("txid", checkout.TxID),
	)
	return checkout, nil
}

// IsTransactionConfirmed GET /shops/{shop}/payouts/transactions и поиск txid в списке
func (c *Client) IsTransactionConfirmed(ctx context.Context, txid string) (bool, error) {
	var resp listResponse[transaction]
	if err := c.do(ctx, "list transactions", http.MethodGet, "/payouts/transactions", nil, &resp); err != nil {
		return false, err
	}

	for _, tx := range resp.Data {
		if tx.TxID == txid && tx.Confirmations >= c.minConfirmations {
			return true, nil
		}
	}
	return false, nil
}

// do выполняет запрос к /shops/{shop}{path} и декодирует JSON ответа в out
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	endpoint := fmt.Sprintf("%s/shops/%s%s", c.baseURL, url.PathEscape(c.shopID), path)

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", op, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("sellauth request failed",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
		)
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Body: strings.ToValidUTF8(strings.TrimSpace(string(body)), "")}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
