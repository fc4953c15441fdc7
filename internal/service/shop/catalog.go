package shop

import (
	"context"

	"go.uber.org/zap"

	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/client/sellauth"
)

// Catalog неизменяемый снимок каталога, загружается один раз при старте.
// Поиск товара: по отображаемому имени.
type Catalog struct {
	products []sellauth.Product
	byName   map[string]int
}

// NewCatalog строит каталог; при повторе имени побеждает первый товар
func NewCatalog(products []sellauth.Product) *Catalog {
	c := &Catalog{
		products: make([]sellauth.Product, 0, len(products)),
		byName:   make(map[string]int, len(products)),
	}
	for _, p := range products {
		if p.Name == "" {
			continue
		}
		if _, dup := c.byName[p.Name]; dup {
			continue
		}
		c.byName[p.Name] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// LoadCatalog загружает каталог из шлюза. Ошибка не фатальна:
// логируем и работаем с пустым каталогом.
func LoadCatalog(ctx context.Context, logger *zap.Logger, gateway sellauth.Gateway) *Catalog {
	products, err := gateway.ListProducts(ctx)
	if err != nil {
		logger.Error("failed to load product catalog, continuing with empty catalog", zap.Error(err))
		return NewCatalog(nil)
	}

	catalog := NewCatalog(products)
	logger.Info("product catalog loaded", zap.Int("products", catalog.Len()))
	return catalog
}

// Len число товаров
func (c *Catalog) Len() int {
	return len(c.products)
}

// Products товары в порядке шлюза
func (c *Catalog) Products() []sellauth.Product {
	return c.products
}

// Product ищет товар по имени
func (c *Catalog) Product(name string) (sellauth.Product, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return sellauth.Product{}, false
	}
	return c.products[idx], true
}

// Variant ищет вариант товара по id
func (c *Catalog) Variant(productName, variantID string) (sellauth.Product, sellauth.Variant, bool) {
	p, ok := c.Product(productName)
	if !ok {
		return sellauth.Product{}, sellauth.Variant{}, false
	}
	for _, v := range p.Variants {
		if string(v.ID) == variantID {
			return p, v, true
		}
	}
	return p, sellauth.Variant{}, false
}
