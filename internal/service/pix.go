package service

import (
	"context"
	"time"

	"github.com/mmeshcher/storefront-checkout/internal/model"
)

// pixWatchInterval — период обновления обратного отсчёта платежа.
const pixWatchInterval = 1 * time.Second

// InitiatePix создаёт платёжное намерение PIX со снимком корзины и данных
// доставки и сроком действия 30 минут. Корзина и флаг готовности
// сохраняются до подтверждения оплаты.
func (s *Service) InitiatePix(ctx context.Context) (*model.PixPayment, error) {
	cart, shipping, err := s.paymentPreconditions(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	id := s.newID("PIX")
	payment := model.PixPayment{
		ID:        id,
		CreatedAt: now,
		Items:     cart,
		Total:     CartTotal(cart),
		Shipping:  *shipping,
		PixKey:    s.pixKey,
		TxID:      id,
		ExpiresAt: now.Add(pixTTL),
	}

	var list []model.PixPayment
	if _, err := s.readJSON(ctx, keyPixPayments, &list); err != nil {
		return nil, err
	}
	list = append(list, payment)

	if err := s.writeJSON(ctx, keyPixPayments, list); err != nil {
		return nil, err
	}

	return &payment, nil
}

// PixPaymentByID возвращает платёж из списка ожидающих.
func (s *Service) PixPaymentByID(ctx context.Context, id string) (*model.PixPayment, error) {
	var list []model.PixPayment
	if _, err := s.readJSON(ctx, keyPixPayments, &list); err != nil {
		return nil, err
	}

	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}

	return nil, ErrPaymentNotFound
}

// PixRemaining возвращает время до истечения платежа.
// Неположительное значение означает, что срок платежа вышел.
func (s *Service) PixRemaining(ctx context.Context, id string) (time.Duration, error) {
	payment, err := s.PixPaymentByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return payment.ExpiresAt.Sub(s.now()), nil
}

// ConfirmPix подтверждает оплату PIX и завершает покупку. Истёкший платёж
// остаётся в списке ожидающих: для повторной попытки создаётся новое
// намерение. Платёж действителен вплоть до момента истечения включительно.
func (s *Service) ConfirmPix(ctx context.Context, id string) (*model.Order, error) {
	var list []model.PixPayment
	if _, err := s.readJSON(ctx, keyPixPayments, &list); err != nil {
		return nil, err
	}

	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrPaymentNotFound
	}

	payment := list[idx]
	if s.now().After(payment.ExpiresAt) {
		return nil, ErrPaymentExpired
	}

	order := s.buildOrder(payment.Items, payment.Total, payment.Shipping, model.PaymentMethodPix, payment.TxID)

	// Сначала фиксируется заказ: если запись в хранилище сорвалась,
	// платёж остаётся в списке ожидающих и подтверждение можно повторить.
	if err := s.completeOrder(ctx, order); err != nil {
		return nil, err
	}

	list = append(list[:idx], list[idx+1:]...)
	if err := s.writeJSON(ctx, keyPixPayments, list); err != nil {
		return nil, err
	}

	return order, nil
}

// WatchPix раз в секунду сообщает оставшееся время платежа через tick,
// пока контекст не будет отменён. Состояние платежа не изменяется:
// истёкший платёж продолжает наблюдаться с отрицательным остатком.
func (s *Service) WatchPix(ctx context.Context, id string, tick func(remaining time.Duration)) error {
	payment, err := s.PixPaymentByID(ctx, id)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(pixWatchInterval)
	defer ticker.Stop()

	tick(payment.ExpiresAt.Sub(s.now()))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			tick(payment.ExpiresAt.Sub(s.now()))
		}
	}
}
