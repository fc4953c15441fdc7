package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data string
		want Action
	}{
		{"purchase_Key", Action{Kind: ActionPurchase, Product: "Key"}},
		{"purchase_Widget_Pro", Action{Kind: ActionPurchase, Product: "Widget_Pro"}},
		{"variant_Widget_10", Action{Kind: ActionVariant, Product: "Widget", VariantID: "10"}},
		{"variant_Widget_Pro_11", Action{Kind: ActionVariant, Product: "Widget_Pro", VariantID: "11"}},
		{"pay_Key_10_BTC", Action{Kind: ActionPay, Product: "Key", VariantID: "10", PaymentMethod: "BTC"}},
		{"pay_Widget_Pro_11_LTC", Action{Kind: ActionPay, Product: "Widget_Pro", VariantID: "11", PaymentMethod: "LTC"}},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := ParseCallback(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCallback_Invalid(t *testing.T) {
	for _, data := range []string{
		"",
		"purchase_",
		"variant_Widget",
		"variant_Widget_",
		"variant__10",
		"pay_Key_BTC",
		"pay_Key_10_",
		"product_1",
		"unknown",
	} {
		t.Run(data, func(t *testing.T) {
			_, err := ParseCallback(data)
			assert.Error(t, err)
		})
	}
}

func TestCallbackData_RoundTrip(t *testing.T) {
	a, err := ParseCallback(PurchaseData("My_Product"))
	require.NoError(t, err)
	assert.Equal(t, "My_Product", a.Product)

	a, err = ParseCallback(VariantData("My_Product", "7"))
	require.NoError(t, err)
	assert.Equal(t, Action{Kind: ActionVariant, Product: "My_Product", VariantID: "7"}, a)

	a, err = ParseCallback(PayData("My_Product", "7", "ETH"))
	require.NoError(t, err)
	assert.Equal(t, Action{Kind: ActionPay, Product: "My_Product", VariantID: "7", PaymentMethod: "ETH"}, a)
}

func TestLooksLikeEmail(t *testing.T) {
	assert.True(t, LooksLikeEmail("user@example.com"))
	assert.True(t, LooksLikeEmail("a@b.c"))
	assert.False(t, LooksLikeEmail("not-an-email"))
	assert.False(t, LooksLikeEmail("user@localhost"))
	assert.False(t, LooksLikeEmail("first.last"))
}
