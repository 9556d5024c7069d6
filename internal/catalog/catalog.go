// Package catalog содержит канонический каталог товаров витрины.
package catalog

import (
	"sort"

	"github.com/mmeshcher/storefront-checkout/internal/model"
)

// Канонические цены. Источник истины для нормализации цен корзины.
var prices = map[string]float64{
	"Mango Ice":  65.00,
	"Strawberry": 70.00,
	"Mint":       75.00,
}

// Price возвращает каноническую цену товара по имени.
// Второе значение false означает, что товара нет в каталоге.
func Price(name string) (float64, bool) {
	p, ok := prices[name]
	return p, ok
}

// Products возвращает список товаров каталога.
func Products() []model.Product {
	res := make([]model.Product, 0, len(prices))
	for name, price := range prices {
		res = append(res, model.Product{Name: name, Price: price})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}
