package shop

import (
	"fmt"
	"strings"
)

// Префиксы callback data inline-кнопок
const (
	prefixPurchase = "purchase_"
	prefixVariant  = "variant_"
	prefixPay      = "pay_"
)

// ActionKind тип нажатой кнопки
type ActionKind int

const (
	ActionPurchase ActionKind = iota + 1
	ActionVariant
	ActionPay
)

// Action разобранная callback data
type Action struct {
	Kind          ActionKind
	Product       string
	VariantID     string
	PaymentMethod string
}

// PurchaseData purchase_<product>
func PurchaseData(product string) string {
	return prefixPurchase + product
}

// VariantData variant_<product>_<variantId>
func VariantData(product, variantID string) string {
	return prefixVariant + product + "_" + variantID
}

// PayData pay_<product>_<variantId>_<method>
func PayData(product, variantID, method string) string {
	return prefixPay + product + "_" + variantID + "_" + method
}

// ParseCallback разбирает callback data. Имя товара может содержать "_",
// поэтому id варианта и способ оплаты отрезаются справа.
func ParseCallback(data string) (Action, error) {
	switch {
	case strings.HasPrefix(data, prefixPurchase):
		product := strings.TrimPrefix(data, prefixPurchase)
		if product == "" {
			return Action{}, fmt.Errorf("callback %q: empty product", data)
		}
		return Action{Kind: ActionPurchase, Product: product}, nil

	case strings.HasPrefix(data, prefixVariant):
		product, variantID, ok := cutLast(strings.TrimPrefix(data, prefixVariant))
		if !ok {
			return Action{}, fmt.Errorf("callback %q: want variant_<product>_<variant>", data)
		}
		return Action{Kind: ActionVariant, Product: product, VariantID: variantID}, nil

	case strings.HasPrefix(data, prefixPay):
		rest, method, ok := cutLast(strings.TrimPrefix(data, prefixPay))
		if !ok {
			return Action{}, fmt.Errorf("callback %q: want pay_<product>_<variant>_<method>", data)
		}
		product, variantID, ok := cutLast(rest)
		if !ok {
			return Action{}, fmt.Errorf("callback %q: want pay_<product>_<variant>_<method>", data)
		}
		return Action{Kind: ActionPay, Product: product, VariantID: variantID, PaymentMethod: method}, nil
	}
	return Action{}, fmt.Errorf("callback %q: unknown action", data)
}

// cutLast делит s по последнему "_"; обе части непустые
func cutLast(s string) (before, after string, ok bool) {
	idx := strings.LastIndex(s, "_")
	if idx <= 0 || idx == len(s)-1 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}
