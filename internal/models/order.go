package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus представляет статус заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusOnDelivery OrderStatus = "on_delivery"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsPending сообщает, ожидает ли заказ обработки (pending, processing, preparing).
func (s OrderStatus) IsPending() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing || s == OrderStatusPreparing
}

// Известные способы оплаты.
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// Order представляет заказ в магазине
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status        OrderStatus     `json:"status" db:"status"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// IsValid возвращает true для любого не отмененного заказа.
func (o *Order) IsValid() bool {
	return o.Status != OrderStatusCancelled
}

// OrderItem представляет позицию заказа вместе с присоединенным товаром
type OrderItem struct {
	OrderID   uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID *uuid.UUID      `json:"product_id,omitempty" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Product   *ProductRef     `json:"product,omitempty"`
}

// Subtotal возвращает quantity*price.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// User представляет покупателя
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Favorite представляет отметку "избранное" пользователя на товаре
type Favorite struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	ProductID *uuid.UUID  `json:"product_id,omitempty" db:"product_id"`
	UserID    uuid.UUID   `json:"user_id" db:"user_id"`
	Product   *ProductRef `json:"product,omitempty"`
}
