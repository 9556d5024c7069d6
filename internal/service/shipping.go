package service

import (
	"context"
	"strings"

	"github.com/mmeshcher/storefront-checkout/internal/model"
)

// ValidateShipping проверяет данные доставки и возвращает их с обрезанными
// пробелами. Все незаполненные обязательные поля собираются в одну ошибку,
// а не возвращаются по одному.
func ValidateShipping(info model.ShippingInfo) (model.ShippingInfo, error) {
	info.Name = strings.TrimSpace(info.Name)
	info.Phone = strings.TrimSpace(info.Phone)
	info.Street = strings.TrimSpace(info.Street)
	info.Number = strings.TrimSpace(info.Number)
	info.Neighborhood = strings.TrimSpace(info.Neighborhood)
	info.City = strings.TrimSpace(info.City)
	info.State = strings.TrimSpace(info.State)
	info.Zip = strings.TrimSpace(info.Zip)
	info.Note = strings.TrimSpace(info.Note)

	var missing []string
	required := []struct {
		field string
		value string
	}{
		{"name", info.Name},
		{"phone", info.Phone},
		{"street", info.Street},
		{"number", info.Number},
		{"neighborhood", info.Neighborhood},
		{"city", info.City},
		{"state", info.State},
	}
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.field)
		}
	}

	if len(missing) > 0 {
		return model.ShippingInfo{}, &ValidationError{Missing: missing}
	}

	return info, nil
}

// SaveShipping сохраняет данные доставки, перезаписывая предыдущие.
// Данные хранятся отдельно от заказов и могут быть использованы повторно.
func (s *Service) SaveShipping(ctx context.Context, info model.ShippingInfo) error {
	return s.writeJSON(ctx, keyShippingInfo, info)
}

// LoadShipping возвращает последние сохранённые данные доставки.
// Если данные не сохранялись или повреждены, возвращается nil.
func (s *Service) LoadShipping(ctx context.Context) (*model.ShippingInfo, error) {
	var info model.ShippingInfo
	ok, err := s.readJSON(ctx, keyShippingInfo, &info)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &info, nil
}
