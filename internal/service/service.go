// Package service реализует бизнес-логику витрины: корзину, оформление
// покупки, оплату картой и PIX, историю заказов.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Store описывает контракт доступа к именованным записям, используемый сервисом.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Ключи записей хранилища.
const (
	keyCart         = "cart"
	keyShippingInfo = "shippingInfo"
	keyReadyToPay   = "readyToPay"
	keyOrders       = "orders"
	keyLastOrder    = "lastOrder"
	keyPixPayments  = "pixPayments"
	keyExportCount  = "exportCount"
)

const (
	// pixTTL — срок действия платёжного намерения PIX.
	pixTTL = 30 * time.Minute
	// deliveryLead — срок ожидаемой доставки с момента создания заказа.
	deliveryLead = 7 * 24 * time.Hour
)

// ErrEmptyCart возвращается при попытке оформить покупку с пустой корзиной.
var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotReady возвращается при попытке оплаты до сохранения данных доставки.
	ErrNotReady = errors.New("purchase is not finalized")
	// ErrMissingShipping возвращается, если данные доставки не удалось получить.
	ErrMissingShipping = errors.New("shipping info is missing")
	// ErrLineNotFound возвращается, если позиция корзины не найдена.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrPaymentNotFound возвращается, если платёж PIX отсутствует в списке ожидающих.
	ErrPaymentNotFound = errors.New("pix payment not found")
	// ErrPaymentExpired возвращается при попытке подтвердить истёкший платёж PIX.
	ErrPaymentExpired = errors.New("pix payment expired")
	// ErrEmptyHistory возвращается при попытке выгрузить пустую историю заказов.
	ErrEmptyHistory = errors.New("order history is empty")
)

// ValidationError перечисляет все незаполненные обязательные поля доставки.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Service содержит бизнес-логику витрины.
type Service struct {
	store  Store
	pixKey string
	now    func() time.Time
}

// NewService создаёт новый сервис с указанным хранилищем и ключом PIX продавца.
func NewService(store Store, pixKey string) *Service {
	return &Service{
		store:  store,
		pixKey: pixKey,
		now:    time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// readJSON читает запись и декодирует её из JSON в dst.
// Отсутствующая или повреждённая запись считается пустой.
func (s *Service) readJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	// Декодирование идёт во временное значение: при ошибке типа
	// Unmarshal оставляет в приёмнике частично разобранные данные,
	// а dst должен остаться нетронутым.
	tmp := reflect.New(reflect.TypeOf(dst).Elem())
	if err := json.Unmarshal(raw, tmp.Interface()); err != nil {
		return false, nil
	}
	reflect.ValueOf(dst).Elem().Set(tmp.Elem())
	return true, nil
}

func (s *Service) writeJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// newID формирует идентификатор из префикса и текущего времени в миллисекундах.
func (s *Service) newID(prefix string) string {
	return prefix + strconv.FormatInt(s.now().UnixMilli(), 10)
}
