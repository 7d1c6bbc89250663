package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodBankTransfer
}

// PaymentStatus is the settlement state of an order.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid || s == PaymentStatusFailed
}

// DerivePaymentStatus returns the payment status implied by moving an order to next.
// A bank transfer that has already been paid keeps its status.
func DerivePaymentStatus(method PaymentMethod, current PaymentStatus, next OrderStatus) PaymentStatus {
	if method == PaymentMethodBankTransfer && current == PaymentStatusPaid {
		return current
	}
	switch next {
	case OrderStatusDelivered:
		return PaymentStatusPaid
	case OrderStatusCancelled:
		return PaymentStatusFailed
	default:
		return PaymentStatusPending
	}
}

// Order represents a customer order.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderCode       string          `json:"orderId" db:"order_code"`
	UserID          *uuid.UUID      `json:"userId,omitempty" db:"user_id"`
	CustomerName    string          `json:"customerName" db:"customer_name"`
	CustomerEmail   string          `json:"customerEmail" db:"customer_email"`
	CustomerPhone   string          `json:"customerPhone" db:"customer_phone"`
	ShippingAddress string          `json:"shippingAddress" db:"shipping_address"`
	Status          OrderStatus     `json:"status" db:"status"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	ShippingFee     decimal.Decimal `json:"shippingFee" db:"shipping_fee"`
	Discount        decimal.Decimal `json:"discount" db:"discount"`
	Total           decimal.Decimal `json:"total" db:"total"`
	Notes           string          `json:"notes" db:"notes"`
	Items           []OrderItem     `json:"items,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OwnedBy reports whether the order belongs to the given user.
func (o *Order) OwnedBy(userID uuid.UUID) bool {
	return o.UserID != nil && *o.UserID == userID
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	OrderID      uuid.UUID       `json:"orderId" db:"order_id"`
	ProductID    uuid.UUID       `json:"productId" db:"product_id"`
	ProductName  string          `json:"productName" db:"product_name"`
	ProductImage string          `json:"productImage" db:"product_image"`
	Quantity     int             `json:"quantity" db:"quantity"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Subtotal     decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// OrderRequest represents the request payload for creating an order.
// Optional money fields are computed from the items when omitted.
type OrderRequest struct {
	OrderCode       string             `json:"orderId,omitempty"`
	CustomerName    string             `json:"customerName"`
	CustomerEmail   string             `json:"customerEmail"`
	CustomerPhone   string             `json:"customerPhone"`
	ShippingAddress string             `json:"shippingAddress"`
	Status          OrderStatus        `json:"status,omitempty"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod"`
	PaymentStatus   PaymentStatus      `json:"paymentStatus,omitempty"`
	Subtotal        *decimal.Decimal   `json:"subtotal,omitempty"`
	ShippingFee     decimal.Decimal    `json:"shippingFee"`
	Discount        decimal.Decimal    `json:"discount"`
	Total           *decimal.Decimal   `json:"total,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	Items           []OrderItemRequest `json:"items"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID    string           `json:"productId"`
	ProductName  string           `json:"productName,omitempty"`
	ProductImage string           `json:"productImage,omitempty"`
	Quantity     int              `json:"quantity"`
	Price        *decimal.Decimal `json:"price,omitempty"`
}

// Validate checks the request shape and fills in defaulted enums.
func (r *OrderRequest) Validate() error {
	if len(r.Items) == 0 {
		return ErrEmptyOrder
	}

	for _, item := range r.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return InvalidInput("productId is required for every item")
		}
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if item.Price != nil && item.Price.IsNegative() {
			return InvalidInput("price cannot be negative")
		}
	}

	// UUID-shaped identifiers always resolve as native ids, so such a code
	// could never be looked up.
	r.OrderCode = strings.TrimSpace(r.OrderCode)
	if _, err := uuid.Parse(r.OrderCode); r.OrderCode != "" && err == nil {
		return InvalidInput("orderId must not be a UUID: %s", r.OrderCode)
	}

	if strings.TrimSpace(r.CustomerName) == "" {
		return InvalidInput("customerName is required")
	}
	if strings.TrimSpace(r.CustomerPhone) == "" {
		return InvalidInput("customerPhone is required")
	}
	if strings.TrimSpace(r.ShippingAddress) == "" {
		return InvalidInput("shippingAddress is required")
	}

	if r.PaymentMethod == "" {
		r.PaymentMethod = PaymentMethodCash
	}
	if !r.PaymentMethod.Valid() {
		return InvalidInput("invalid paymentMethod: %s", r.PaymentMethod)
	}

	if r.Status == "" {
		r.Status = OrderStatusPending
	}
	if !r.Status.Valid() {
		return InvalidInput("invalid status: %s", r.Status)
	}

	if r.PaymentStatus == "" {
		r.PaymentStatus = PaymentStatusPending
	}
	if !r.PaymentStatus.Valid() {
		return InvalidInput("invalid paymentStatus: %s", r.PaymentStatus)
	}

	if r.ShippingFee.IsNegative() || r.Discount.IsNegative() {
		return InvalidInput("shippingFee and discount cannot be negative")
	}

	return nil
}

// UpdateOrderStatusRequest is the body of a status transition.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	UserID        *uuid.UUID
	Status        OrderStatus
	CustomerPhone string
	Page          Page
}

// OrderResponse wraps a single order for the API envelope.
type OrderResponse struct {
	Order *Order `json:"order"`
}

// CreateOrderResult is the outcome of placing an order. Payment is set
// when a bank transfer was opened with the gateway.
type CreateOrderResult struct {
	Order   *Order
	Payment *PaymentData
}
