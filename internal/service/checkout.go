package service

import (
	"context"

	"github.com/mmeshcher/storefront-checkout/internal/model"
)

// Finalize проверяет корзину и данные доставки, сохраняет данные и
// устанавливает флаг готовности к оплате. Повторный вызов перезаписывает
// данные доставки и оставляет флаг установленным.
func (s *Service) Finalize(ctx context.Context, info model.ShippingInfo) error {
	cart, err := s.Cart(ctx)
	if err != nil {
		return err
	}
	if len(cart) == 0 {
		return ErrEmptyCart
	}

	valid, err := ValidateShipping(info)
	if err != nil {
		return err
	}

	if err := s.SaveShipping(ctx, valid); err != nil {
		return err
	}

	return s.store.Set(ctx, keyReadyToPay, []byte("1"))
}

// PayByCard завершает покупку оплатой картой и возвращает созданный заказ.
func (s *Service) PayByCard(ctx context.Context) (*model.Order, error) {
	cart, shipping, err := s.paymentPreconditions(ctx)
	if err != nil {
		return nil, err
	}

	order := s.buildOrder(cart, CartTotal(cart), *shipping, model.PaymentMethodCard, "")
	if err := s.completeOrder(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// paymentPreconditions проверяет допустимость оплаты: непустая корзина,
// установленный флаг готовности и доступные данные доставки.
// Все проверки выполняются до какой-либо записи в хранилище.
func (s *Service) paymentPreconditions(ctx context.Context) ([]model.CartLine, *model.ShippingInfo, error) {
	cart, err := s.Cart(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(cart) == 0 {
		return nil, nil, ErrEmptyCart
	}

	raw, ok, err := s.store.Get(ctx, keyReadyToPay)
	if err != nil {
		return nil, nil, err
	}
	if !ok || string(raw) != "1" {
		return nil, nil, ErrNotReady
	}

	shipping, err := s.LoadShipping(ctx)
	if err != nil {
		return nil, nil, err
	}
	if shipping == nil {
		return nil, nil, ErrMissingShipping
	}

	return cart, shipping, nil
}

func (s *Service) buildOrder(items []model.CartLine, total float64, shipping model.ShippingInfo, method model.PaymentMethod, pixTxID string) *model.Order {
	now := s.now()
	return &model.Order{
		ID:                s.newID("ORD"),
		CreatedAt:         now,
		Items:             items,
		Total:             total,
		Shipping:          shipping,
		PaymentMethod:     method,
		PaymentStatus:     model.PaymentStatusPaid,
		PixTxID:           pixTxID,
		EstimatedDelivery: now.Add(deliveryLead),
	}
}

// completeOrder записывает заказ в историю и в lastOrder, затем снимает
// флаг готовности и очищает корзину.
func (s *Service) completeOrder(ctx context.Context, order *model.Order) error {
	if err := s.recordOrder(ctx, order); err != nil {
		return err
	}
	if err := s.writeJSON(ctx, keyLastOrder, order); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, keyReadyToPay); err != nil {
		return err
	}
	return s.store.Delete(ctx, keyCart)
}
