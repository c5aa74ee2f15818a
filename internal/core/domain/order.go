package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryMethod string

const (
	DeliveryShip   DeliveryMethod = "delivery"
	DeliveryPickup DeliveryMethod = "pickup"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryShip || m == DeliveryPickup
}

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCash   PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentCash
}

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
)

// Customer holds the contact fields entered during checkout. Address is
// meaningful only when the delivery method ships to an address.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// CheckoutDraft is the customer input gathered on the checkout screen. It
// lives only for the duration of that screen and is discarded on navigation
// away or on successful submission.
type CheckoutDraft struct {
	Customer
	Notes    string
	Delivery DeliveryMethod
	Payment  PaymentMethod
}

// OrderSummary is a derived projection over the cart and the delivery
// choice. It is recomputed on every read and never stored, so it cannot go
// stale relative to either input.
type OrderSummary struct {
	Lines       []CartLine
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// Order is a confirmed cash-on-delivery order as persisted.
type Order struct {
	ID          string
	Lines       []CartLine
	Customer    Customer
	Delivery    DeliveryMethod
	Notes       string
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
	Status      OrderStatus
	CreatedAt   time.Time
}
