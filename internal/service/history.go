package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mmeshcher/storefront-checkout/internal/model"
)

// recordOrder добавляет заказ в начало истории: история хранится
// от новых к старым.
func (s *Service) recordOrder(ctx context.Context, order *model.Order) error {
	var orders []model.Order
	if _, err := s.readJSON(ctx, keyOrders, &orders); err != nil {
		return err
	}

	orders = append([]model.Order{*order}, orders...)
	return s.writeJSON(ctx, keyOrders, orders)
}

// Orders возвращает историю заказов, от новых к старым.
func (s *Service) Orders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if _, err := s.readJSON(ctx, keyOrders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// LastOrder возвращает последний созданный заказ или nil.
func (s *Service) LastOrder(ctx context.Context) (*model.Order, error) {
	var order model.Order
	ok, err := s.readJSON(ctx, keyLastOrder, &order)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &order, nil
}

// ExportOrders сериализует историю заказов для выгрузки в файл orders.json
// и увеличивает счётчик выгрузок ровно на единицу. Пустая история не
// выгружается, и счётчик при этом не меняется.
func (s *Service) ExportOrders(ctx context.Context) ([]byte, error) {
	orders, err := s.Orders(ctx)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrEmptyHistory
	}

	data, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal orders: %w", err)
	}

	count, err := s.ExportCount(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, keyExportCount, []byte(strconv.Itoa(count+1))); err != nil {
		return nil, fmt.Errorf("write %s: %w", keyExportCount, err)
	}

	return data, nil
}

// ExportCount возвращает число выполненных выгрузок истории.
func (s *Service) ExportCount(ctx context.Context) (int, error) {
	raw, ok, err := s.store.Get(ctx, keyExportCount)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", keyExportCount, err)
	}
	if !ok {
		return 0, nil
	}

	count, err := strconv.Atoi(string(raw))
	if err != nil {
		// Повреждённое значение счётчика считается нулём.
		return 0, nil
	}

	return count, nil
}

// ClearOrders безвозвратно удаляет историю заказов.
func (s *Service) ClearOrders(ctx context.Context) error {
	return s.store.Delete(ctx, keyOrders)
}
