package shop

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/client/sellauth"
	gatewayMocks "github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/client/sellauth/mocks"
)

func TestCatalog_Lookup(t *testing.T) {
	c := NewCatalog([]sellauth.Product{
		{ID: "1", Name: "Widget", Variants: []sellauth.Variant{{ID: "10", Name: "A"}, {ID: "11", Name: "B"}}},
		{ID: "2", Name: "Gadget", Variants: []sellauth.Variant{{ID: "20", Name: "Only"}}},
		{ID: "3", Name: "Widget"},
		{ID: "4", Name: ""},
	})

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "Widget", c.Products()[0].Name)
	assert.Equal(t, "Gadget", c.Products()[1].Name)

	p, ok := c.Product("Widget")
	require.True(t, ok)
	assert.Equal(t, sellauth.ID("1"), p.ID)

	_, ok = c.Product("Nope")
	assert.False(t, ok)

	p, v, ok := c.Variant("Widget", "11")
	require.True(t, ok)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, "B", v.Name)

	p, _, ok = c.Variant("Widget", "99")
	assert.False(t, ok)
	assert.Equal(t, "Widget", p.Name)

	p, _, ok = c.Variant("Nope", "10")
	assert.False(t, ok)
	assert.Empty(t, p.Name)
}

func TestLoadCatalog(t *testing.T) {
	gateway := gatewayMocks.NewGateway(t)
	gateway.On("ListProducts", mock.Anything).Return([]sellauth.Product{{ID: "1", Name: "Key", Variants: []sellauth.Variant{{ID: "10"}}}}, nil).Once()

	c := LoadCatalog(context.Background(), zap.NewNop(), gateway)
	assert.Equal(t, 1, c.Len())
}

func TestLoadCatalog_FailureGivesEmptyCatalog(t *testing.T) {
	gateway := gatewayMocks.NewGateway(t)
	gateway.On("ListProducts", mock.Anything).Return(nil, &sellauth.GatewayError{Op: "list products", StatusCode: 500}).Once()

	c := LoadCatalog(context.Background(), zap.NewNop(), gateway)
	require.NotNil(t, c)
	assert.Zero(t, c.Len())
}

func TestValidationError(t *testing.T) {
	err := error(&ValidationError{What: "Product", Key: "Nope"})
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, `Product "Nope" not found`, err.Error())
}
