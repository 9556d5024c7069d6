package service

import (
	"context"

	"github.com/mmeshcher/storefront-checkout/internal/catalog"
	"github.com/mmeshcher/storefront-checkout/internal/model"
)

// Cart возвращает корзину, предварительно приведя цены позиций к каталожным.
// Нормализация выполняется в начале каждой операции чтения корзины, чтобы
// показанные и списанные цены не расходились с каноническими.
func (s *Service) Cart(ctx context.Context) ([]model.CartLine, error) {
	var cart []model.CartLine
	if _, err := s.readJSON(ctx, keyCart, &cart); err != nil {
		return nil, err
	}

	changed := false
	for i := range cart {
		if price, ok := catalog.Price(cart[i].Name); ok && cart[i].Price != price {
			cart[i].Price = price
			changed = true
		}
	}

	if changed {
		if err := s.writeJSON(ctx, keyCart, cart); err != nil {
			return nil, err
		}
	}

	return cart, nil
}

// AddItem добавляет товар в корзину. Позиция с теми же именем и ценой
// увеличивает количество, иначе добавляется новая позиция с количеством 1.
func (s *Service) AddItem(ctx context.Context, name string, price float64) ([]model.CartLine, error) {
	var cart []model.CartLine
	if _, err := s.readJSON(ctx, keyCart, &cart); err != nil {
		return nil, err
	}

	merged := false
	for i := range cart {
		if cart[i].Name == name && cart[i].Price == price {
			cart[i].Qty++
			merged = true
			break
		}
	}
	if !merged {
		cart = append(cart, model.CartLine{Name: name, Price: price, Qty: 1})
	}

	if err := s.writeJSON(ctx, keyCart, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// SetQuantity устанавливает количество позиции, найденной по имени и цене.
// Количество не опускается ниже нуля; нулевое количество удаляет позицию.
func (s *Service) SetQuantity(ctx context.Context, name string, price float64, qty int) ([]model.CartLine, error) {
	var cart []model.CartLine
	if _, err := s.readJSON(ctx, keyCart, &cart); err != nil {
		return nil, err
	}

	if qty < 0 {
		qty = 0
	}

	idx := -1
	for i := range cart {
		if cart[i].Name == name && cart[i].Price == price {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrLineNotFound
	}

	if qty == 0 {
		cart = append(cart[:idx], cart[idx+1:]...)
	} else {
		cart[idx].Qty = qty
	}

	if err := s.writeJSON(ctx, keyCart, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// ClearCart удаляет запись корзины целиком.
func (s *Service) ClearCart(ctx context.Context) error {
	return s.store.Delete(ctx, keyCart)
}

// CartTotal возвращает сумму корзины.
func CartTotal(lines []model.CartLine) float64 {
	total := 0.0
	for _, line := range lines {
		total += line.Price * float64(line.Qty)
	}
	return total
}

// CartCount возвращает общее количество товаров в корзине.
func CartCount(lines []model.CartLine) int {
	count := 0
	for _, line := range lines {
		count += line.Qty
	}
	return count
}
