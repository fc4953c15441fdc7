package sellauth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ID: идентификатор SellAuth. API отдаёт id то числом, то строкой,
// поэтому храним как строку и принимаем оба варианта.
type ID string

// UnmarshalJSON принимает 123, "123" и null
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("sellauth id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Int возвращает числовое значение id, которое ждёт checkout
func (id ID) Int() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

func (id ID) String() string { return string(id) }

// Variant вариант товара
type Variant struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Product товар магазина с упорядоченными вариантами
type Product struct {
	ID       ID        `json:"id"`
	Name     string    `json:"name"`
	Variants []Variant `json:"variants"`
}

// CartItem позиция корзины в запросе checkout
type CartItem struct {
	ProductID    int64             `json:"productId"`
	VariantID    int64             `json:"variantId"`
	Quantity     int               `json:"quantity"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// CheckoutRequest параметры создания счёта
type CheckoutRequest struct {
	ProductID     ID
	VariantID     ID
	Quantity      int
	PaymentMethod string
	// Email покупателя, необязателен
	Email        string
	CustomFields map[string]string
}

type checkoutBody struct {
	Cart    []CartItem `json:"cart"`
	Gateway string     `json:"gateway"`
	Email   string     `json:"email,omitempty"`
}

// Checkout результат создания счёта. TxID, Address и Amount могут отсутствовать.
type Checkout struct {
	InvoiceURL string
	TxID       string
	Address    string
	Amount     decimal.NullDecimal
}

// checkoutResponse: разные версии API кладут одно и то же в разные поля
type checkoutResponse struct {
	InvoiceURL     string              `json:"invoice_url"`
	URL            string              `json:"url"`
	TxID           ID                  `json:"txid"`
	TransactionID  ID                  `json:"transaction_id"`
	ID             ID                  `json:"id"`
	Address        string              `json:"address"`
	PaymentAddress string              `json:"payment_address"`
	Amount         decimal.NullDecimal `json:"amount"`
	Total          decimal.NullDecimal `json:"total"`
}

func (r checkoutResponse) toCheckout() Checkout {
	out := Checkout{
		InvoiceURL: firstNonEmpty(r.InvoiceURL, r.URL),
		TxID:       firstNonEmpty(string(r.TxID), string(r.TransactionID), string(r.ID)),
		Address:    firstNonEmpty(r.Address, r.PaymentAddress),
		Amount:     r.Amount,
	}
	if !out.Amount.Valid || out.Amount.Decimal.IsZero() {
		if r.Total.Valid {
			out.Amount = r.Total
		}
	}
	return out
}

type transaction struct {
	TxID          string `json:"txid"`
	Confirmations int    `json:"confirmations"`
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
