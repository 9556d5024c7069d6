// Package handler содержит HTTP-обработчики API витрины.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-checkout/internal/catalog"
	"github.com/mmeshcher/storefront-checkout/internal/model"
	"github.com/mmeshcher/storefront-checkout/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Cart(ctx context.Context) ([]model.CartLine, error)
	AddItem(ctx context.Context, name string, price float64) ([]model.CartLine, error)
	SetQuantity(ctx context.Context, name string, price float64, qty int) ([]model.CartLine, error)
	ClearCart(ctx context.Context) error
	LoadShipping(ctx context.Context) (*model.ShippingInfo, error)
	Finalize(ctx context.Context, info model.ShippingInfo) error
	PayByCard(ctx context.Context) (*model.Order, error)
	InitiatePix(ctx context.Context) (*model.PixPayment, error)
	PixPaymentByID(ctx context.Context, id string) (*model.PixPayment, error)
	PixRemaining(ctx context.Context, id string) (time.Duration, error)
	ConfirmPix(ctx context.Context, id string) (*model.Order, error)
	WatchPix(ctx context.Context, id string, tick func(remaining time.Duration)) error
	Orders(ctx context.Context) ([]model.Order, error)
	LastOrder(ctx context.Context) (*model.Order, error)
	ExportOrders(ctx context.Context) ([]byte, error)
	ExportCount(ctx context.Context) (int, error)
	ClearOrders(ctx context.Context) error
}

// Handler реализует HTTP-обработчики API витрины.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

type errorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

// respondError переводит ошибки бизнес-логики в HTTP-статусы.
// Внутренние ошибки логируются и не раскрываются клиенту.
func (h *Handler) respondError(w http.ResponseWriter, err error, action string) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   vErr.Error(),
			Missing: vErr.Missing,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotReady), errors.Is(err, service.ErrMissingShipping):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrLineNotFound), errors.Is(err, service.ErrPaymentNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrPaymentExpired):
		h.writeJSON(w, http.StatusGone, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrEmptyHistory):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		h.logger.Error(action+" error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// GetProducts возвращает каталог товаров с каноническими ценами.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, catalog.Products())
}

type cartResponse struct {
	Items []model.CartLine `json:"items"`
	Total float64          `json:"total"`
	Count int              `json:"count"`
}

func newCartResponse(lines []model.CartLine) cartResponse {
	if lines == nil {
		lines = []model.CartLine{}
	}
	return cartResponse{
		Items: lines,
		Total: service.CartTotal(lines),
		Count: service.CartCount(lines),
	}
}

// GetCart возвращает корзину с нормализованными ценами, суммой и количеством.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.Cart(r.Context())
	if err != nil {
		h.respondError(w, err, "get cart")
		return
	}

	h.writeJSON(w, http.StatusOK, newCartResponse(cart))
}

type addItemRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// AddCartItem добавляет товар в корзину.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Price < 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	cart, err := h.service.AddItem(r.Context(), req.Name, req.Price)
	if err != nil {
		h.respondError(w, err, "add cart item")
		return
	}

	h.writeJSON(w, http.StatusOK, newCartResponse(cart))
}

type setQuantityRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

// UpdateCartItem устанавливает количество позиции корзины.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	cart, err := h.service.SetQuantity(r.Context(), req.Name, req.Price, req.Qty)
	if err != nil {
		h.respondError(w, err, "update cart item")
		return
	}

	h.writeJSON(w, http.StatusOK, newCartResponse(cart))
}

// ClearCart удаляет корзину целиком.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCart(r.Context()); err != nil {
		h.respondError(w, err, "clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetShipping возвращает сохранённые данные доставки.
func (h *Handler) GetShipping(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.LoadShipping(r.Context())
	if err != nil {
		h.respondError(w, err, "get shipping")
		return
	}

	if info == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, http.StatusOK, info)
}

type finalizeResponse struct {
	ReadyToPay bool `json:"readyToPay"`
}

// Finalize сохраняет данные доставки и открывает возможность оплаты.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	var info model.ShippingInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.Finalize(r.Context(), info); err != nil {
		h.respondError(w, err, "finalize")
		return
	}

	h.writeJSON(w, http.StatusOK, finalizeResponse{ReadyToPay: true})
}

// PayByCard завершает покупку оплатой картой.
func (h *Handler) PayByCard(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.PayByCard(r.Context())
	if err != nil {
		h.respondError(w, err, "pay by card")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

// InitiatePix создаёт платёжное намерение PIX.
func (h *Handler) InitiatePix(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.InitiatePix(r.Context())
	if err != nil {
		h.respondError(w, err, "initiate pix")
		return
	}

	h.writeJSON(w, http.StatusCreated, payment)
}

type pixStatusResponse struct {
	*model.PixPayment
	RemainingSeconds int64 `json:"remainingSeconds"`
	Expired          bool  `json:"expired"`
}

// GetPixPayment возвращает платёж PIX с оставшимся временем.
func (h *Handler) GetPixPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payment, err := h.service.PixPaymentByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get pix payment")
		return
	}

	remaining, err := h.service.PixRemaining(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get pix remaining")
		return
	}

	h.writeJSON(w, http.StatusOK, pixStatusResponse{
		PixPayment:       payment,
		RemainingSeconds: int64(remaining.Seconds()),
		// Платёж действителен вплоть до момента истечения включительно,
		// та же граница, что и при подтверждении.
		Expired: remaining < 0,
	})
}

// PixCountdown отдаёт обратный отсчёт платежа потоком server-sent events,
// по событию в секунду, пока клиент не закроет соединение.
func (h *Handler) PixCountdown(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	// Платёж проверяется до начала потока, чтобы вернуть честный 404.
	if _, err := h.service.PixPaymentByID(r.Context(), id); err != nil {
		h.respondError(w, err, "pix countdown")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	err := h.service.WatchPix(r.Context(), id, func(remaining time.Duration) {
		fmt.Fprintf(w, "data: %d\n\n", int64(remaining.Seconds()))
		flusher.Flush()
	})
	if err != nil {
		h.logger.Error("pix countdown error", zap.Error(err), zap.String("payment", id))
	}
}

// ConfirmPix подтверждает оплату PIX и завершает покупку.
func (h *Handler) ConfirmPix(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.service.ConfirmPix(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "confirm pix")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

// GetOrders возвращает историю заказов, от новых к старым.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.Orders(r.Context())
	if err != nil {
		h.respondError(w, err, "get orders")
		return
	}

	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

// GetLastOrder возвращает последний созданный заказ.
func (h *Handler) GetLastOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.LastOrder(r.Context())
	if err != nil {
		h.respondError(w, err, "get last order")
		return
	}

	if order == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

// ExportOrders выгружает историю заказов файлом orders.json.
func (h *Handler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportOrders(r.Context())
	if err != nil {
		h.respondError(w, err, "export orders")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("write export error", zap.Error(err))
	}
}

// ClearOrders безвозвратно удаляет историю заказов.
func (h *Handler) ClearOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearOrders(r.Context()); err != nil {
		h.respondError(w, err, "clear orders")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
