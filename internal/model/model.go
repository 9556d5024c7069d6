// Package model содержит доменные сущности витрины магазина.
package model

import "time"

// Product описывает товар каталога с канонической ценой.
type Product struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CartLine описывает позицию корзины. Цена фиксируется на момент добавления
// и приводится к каталожной при нормализации.
type CartLine struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

// ShippingInfo содержит данные покупателя для доставки заказа.
// Zip и Note необязательны, остальные поля обязательны.
type ShippingInfo struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip,omitempty"`
	Note         string `json:"note,omitempty"`
}

// PaymentMethod описывает способ оплаты заказа.
type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "CARD"
	PaymentMethodPix  PaymentMethod = "PIX"
)

// PaymentStatus описывает статус оплаты заказа.
type PaymentStatus string

// PaymentStatusPaid — единственный статус завершённого заказа:
// заказ создаётся только после подтверждения оплаты.
const PaymentStatusPaid PaymentStatus = "PAID"

// PixPayment описывает ожидающее платёжное намерение PIX со снимком корзины
// и данных доставки на момент создания.
type PixPayment struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	Items     []CartLine   `json:"items"`
	Total     float64      `json:"total"`
	Shipping  ShippingInfo `json:"shipping"`
	PixKey    string       `json:"pixKey"`
	TxID      string       `json:"txid"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Order описывает завершённый заказ. После создания заказ неизменяем.
type Order struct {
	ID                string        `json:"id"`
	CreatedAt         time.Time     `json:"createdAt"`
	Items             []CartLine    `json:"items"`
	Total             float64       `json:"total"`
	Shipping          ShippingInfo  `json:"shipping"`
	PaymentMethod     PaymentMethod `json:"paymentMethod"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	PixTxID           string        `json:"pixTxId,omitempty"`
	EstimatedDelivery time.Time     `json:"estimatedDelivery"`
}
