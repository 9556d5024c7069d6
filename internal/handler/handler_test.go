package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-checkout/internal/model"
	"github.com/mmeshcher/storefront-checkout/internal/service"
)

type stubService struct {
	cartResp []model.CartLine
	cartErr  error

	addResp []model.CartLine
	addErr  error

	setQtyResp []model.CartLine
	setQtyErr  error

	clearCartErr error

	shippingResp *model.ShippingInfo
	shippingErr  error

	finalizeErr error

	payCardResp *model.Order
	payCardErr  error

	initiatePixResp *model.PixPayment
	initiatePixErr  error

	pixByIDResp *model.PixPayment
	pixByIDErr  error

	pixRemaining    time.Duration
	pixRemainingErr error

	confirmResp *model.Order
	confirmErr  error

	ordersResp []model.Order
	ordersErr  error

	lastOrderResp *model.Order
	lastOrderErr  error

	exportData []byte
	exportErr  error

	exportCount int

	clearOrdersErr error
}

func (s *stubService) Cart(ctx context.Context) ([]model.CartLine, error) {
	return s.cartResp, s.cartErr
}

func (s *stubService) AddItem(ctx context.Context, name string, price float64) ([]model.CartLine, error) {
	return s.addResp, s.addErr
}

func (s *stubService) SetQuantity(ctx context.Context, name string, price float64, qty int) ([]model.CartLine, error) {
	return s.setQtyResp, s.setQtyErr
}

func (s *stubService) ClearCart(ctx context.Context) error {
	return s.clearCartErr
}

func (s *stubService) LoadShipping(ctx context.Context) (*model.ShippingInfo, error) {
	return s.shippingResp, s.shippingErr
}

func (s *stubService) Finalize(ctx context.Context, info model.ShippingInfo) error {
	return s.finalizeErr
}

func (s *stubService) PayByCard(ctx context.Context) (*model.Order, error) {
	return s.payCardResp, s.payCardErr
}

func (s *stubService) InitiatePix(ctx context.Context) (*model.PixPayment, error) {
	return s.initiatePixResp, s.initiatePixErr
}

func (s *stubService) PixPaymentByID(ctx context.Context, id string) (*model.PixPayment, error) {
	return s.pixByIDResp, s.pixByIDErr
}

func (s *stubService) PixRemaining(ctx context.Context, id string) (time.Duration, error) {
	return s.pixRemaining, s.pixRemainingErr
}

func (s *stubService) ConfirmPix(ctx context.Context, id string) (*model.Order, error) {
	return s.confirmResp, s.confirmErr
}

func (s *stubService) WatchPix(ctx context.Context, id string, tick func(remaining time.Duration)) error {
	tick(s.pixRemaining)
	return nil
}

func (s *stubService) Orders(ctx context.Context) ([]model.Order, error) {
	return s.ordersResp, s.ordersErr
}

func (s *stubService) LastOrder(ctx context.Context) (*model.Order, error) {
	return s.lastOrderResp, s.lastOrderErr
}

func (s *stubService) ExportOrders(ctx context.Context) ([]byte, error) {
	return s.exportData, s.exportErr
}

func (s *stubService) ExportCount(ctx context.Context) (int, error) {
	return s.exportCount, nil
}

func (s *stubService) ClearOrders(ctx context.Context) error {
	return s.clearOrdersErr
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	return NewHandler(svc, logger)
}

func TestGetCart_ReturnsTotalsAndCount(t *testing.T) {
	svc := &stubService{
		cartResp: []model.CartLine{
			{Name: "Mango Ice", Price: 65.00, Qty: 2},
			{Name: "Mint", Price: 75.00, Qty: 1},
		},
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()

	h.GetCart(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var resp cartResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 205.00 {
		t.Fatalf("total = %v, want 205.00", resp.Total)
	}
	if resp.Count != 3 {
		t.Fatalf("count = %d, want 3", resp.Count)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(resp.Items))
	}
}

func TestGetCart_EmptyCartReturnsEmptyArray(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()

	h.GetCart(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `"items":[]`) {
		t.Fatalf("body = %q, want items to be an empty array", body)
	}
}

func TestAddCartItem_BadJSON(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.AddCartItem(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAddCartItem_EmptyName(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	body, _ := json.Marshal(addItemRequest{Name: "", Price: 65.00})

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.AddCartItem(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateCartItem_LineNotFound(t *testing.T) {
	svc := &stubService{
		setQtyErr: service.ErrLineNotFound,
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(setQuantityRequest{Name: "Mint", Price: 75.00, Qty: 2})

	req := httptest.NewRequest(http.MethodPut, "/api/cart/items", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.UpdateCartItem(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestClearCart_NoContent(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/cart", nil)
	rec := httptest.NewRecorder()

	h.ClearCart(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestGetShipping_AbsentReturnsNoContent(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/shipping", nil)
	rec := httptest.NewRecorder()

	h.GetShipping(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestFinalize_ValidationErrorListsMissingFields(t *testing.T) {
	svc := &stubService{
		finalizeErr: &service.ValidationError{Missing: []string{"name", "phone"}},
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(model.ShippingInfo{City: "São Paulo"})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/finalize", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Finalize(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnprocessableEntity)
	}

	var resp errorResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Missing) != 2 || resp.Missing[0] != "name" || resp.Missing[1] != "phone" {
		t.Fatalf("missing = %v, want [name phone]", resp.Missing)
	}
}

func TestFinalize_EmptyCart(t *testing.T) {
	svc := &stubService{
		finalizeErr: service.ErrEmptyCart,
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(model.ShippingInfo{})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/finalize", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Finalize(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPayByCard_NotReady(t *testing.T) {
	svc := &stubService{
		payCardErr: service.ErrNotReady,
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/card", nil)
	rec := httptest.NewRecorder()

	h.PayByCard(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestPayByCard_Success(t *testing.T) {
	created := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc := &stubService{
		payCardResp: &model.Order{
			ID:                "ORD1756728000000",
			CreatedAt:         created,
			Items:             []model.CartLine{{Name: "Strawberry", Price: 70.00, Qty: 1}},
			Total:             70.00,
			PaymentMethod:     model.PaymentMethodCard,
			PaymentStatus:     model.PaymentStatusPaid,
			EstimatedDelivery: created.Add(7 * 24 * time.Hour),
		},
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/card", nil)
	rec := httptest.NewRecorder()

	h.PayByCard(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var order model.Order
	if err := json.NewDecoder(res.Body).Decode(&order); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if order.ID != "ORD1756728000000" {
		t.Fatalf("order id = %q", order.ID)
	}
	if order.PaymentMethod != model.PaymentMethodCard {
		t.Fatalf("payment method = %q, want %q", order.PaymentMethod, model.PaymentMethodCard)
	}
}

func TestInitiatePix_Created(t *testing.T) {
	created := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc := &stubService{
		initiatePixResp: &model.PixPayment{
			ID:        "PIX1756728000000",
			CreatedAt: created,
			Items:     []model.CartLine{{Name: "Mango Ice", Price: 65.00, Qty: 1}},
			Total:     65.00,
			PixKey:    "test-pix-key",
			TxID:      "PIX1756728000000",
			ExpiresAt: created.Add(30 * time.Minute),
		},
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/pix", nil)
	rec := httptest.NewRecorder()

	h.InitiatePix(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusCreated)
	}

	var payment model.PixPayment
	if err := json.NewDecoder(res.Body).Decode(&payment); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payment.TxID != "PIX1756728000000" {
		t.Fatalf("txid = %q", payment.TxID)
	}
}

func TestGetPixPayment_ViaRouter(t *testing.T) {
	created := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc := &stubService{
		pixByIDResp: &model.PixPayment{
			ID:        "PIX1756728000000",
			CreatedAt: created,
			Total:     65.00,
			ExpiresAt: created.Add(30 * time.Minute),
		},
		pixRemaining: 20 * time.Minute,
	}
	h := newTestHandler(t, svc)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/pix/PIX1756728000000", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var resp struct {
		ID               string `json:"id"`
		RemainingSeconds int64  `json:"remainingSeconds"`
		Expired          bool   `json:"expired"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "PIX1756728000000" {
		t.Fatalf("id = %q", resp.ID)
	}
	if resp.RemainingSeconds != 1200 {
		t.Fatalf("remainingSeconds = %d, want 1200", resp.RemainingSeconds)
	}
	if resp.Expired {
		t.Fatalf("payment must not be expired")
	}
}

func TestGetPixPayment_NotFound(t *testing.T) {
	svc := &stubService{
		pixByIDErr: service.ErrPaymentNotFound,
	}
	h := newTestHandler(t, svc)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/pix/PIX123", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPixCountdown_StreamsRemainingSeconds(t *testing.T) {
	svc := &stubService{
		pixByIDResp:  &model.PixPayment{ID: "PIX123"},
		pixRemaining: 20 * time.Minute,
	}
	h := newTestHandler(t, svc)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/pix/PIX123/countdown", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if ct := res.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q, want text/event-stream", ct)
	}
	if body := rec.Body.String(); !strings.Contains(body, "data: 1200\n\n") {
		t.Fatalf("body = %q, want it to contain %q", body, "data: 1200\n\n")
	}
}

func TestConfirmPix_Expired(t *testing.T) {
	svc := &stubService{
		confirmErr: service.ErrPaymentExpired,
	}
	h := newTestHandler(t, svc)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/pix/PIX123/confirm", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusGone {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusGone)
	}
}

func TestGetOrders_EmptyReturnsNoContent(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()

	h.GetOrders(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestGetLastOrder_AbsentReturnsNoContent(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/last", nil)
	rec := httptest.NewRecorder()

	h.GetLastOrder(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestExportOrders_AttachmentHeaders(t *testing.T) {
	svc := &stubService{
		exportData: []byte("[\n  {\n    \"id\": \"ORD1\"\n  }\n]"),
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/export", nil)
	rec := httptest.NewRecorder()

	h.ExportOrders(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if cd := res.Header.Get("Content-Disposition"); cd != `attachment; filename="orders.json"` {
		t.Fatalf("content-disposition = %q", cd)
	}
	if rec.Body.String() != string(svc.exportData) {
		t.Fatalf("body = %q, want exported payload verbatim", rec.Body.String())
	}
}

func TestExportOrders_EmptyHistory(t *testing.T) {
	svc := &stubService{
		exportErr: service.ErrEmptyHistory,
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/export", nil)
	rec := httptest.NewRecorder()

	h.ExportOrders(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestClearOrders_NoContent(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/orders", nil)
	rec := httptest.NewRecorder()

	h.ClearOrders(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
