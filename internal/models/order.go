package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Order lifecycle. Pending orders move to paid or failed via the Stripe
// webhook; paid orders may later become refunded or partial_refunded. All
// other states are terminal.
const (
	OrderPending         = "pending"
	OrderPaid            = "paid"
	OrderFailed          = "failed"
	OrderRefunded        = "refunded"
	OrderPartialRefunded = "partial_refunded"
)

// ValidTransition encodes the order state machine.
func ValidTransition(from, to string) bool {
	switch from {
	case OrderPending:
		return to == OrderPaid || to == OrderFailed
	case OrderPaid:
		return to == OrderRefunded || to == OrderPartialRefunded
	}
	return false
}

type Order struct {
	bun.BaseModel `bun:"table:orders,alias:orders"`

	ID              string    `bun:"id,pk" json:"id"`
	EventID         string    `bun:"event_id,notnull" json:"event_id"`
	UserID          string    `bun:"user_id,nullzero" json:"user_id,omitempty"` // empty for guest checkout
	Email           string    `bun:"email,notnull" json:"email"`
	Currency        string    `bun:"currency,notnull" json:"currency"`
	TotalAmount     int64     `bun:"total_amount,notnull" json:"total_amount"` // minor currency units
	CouponCode      string    `bun:"coupon_code,nullzero" json:"coupon_code,omitempty"`
	Status          string    `bun:"status,notnull" json:"status"`
	StripeSessionID string    `bun:"stripe_session_id,nullzero" json:"stripe_session_id,omitempty"`
	PaymentIntentID string    `bun:"payment_intent_id,nullzero" json:"payment_intent_id,omitempty"`
	InvoiceURL      string    `bun:"invoice_url,nullzero" json:"invoice_url,omitempty"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero" json:"updated_at"`

	Items []OrderItem `bun:"rel:has-many,join:id=order_id" json:"items"`
}

// OrderItem freezes the unit price at purchase time. Later price edits to the
// ticket type never touch existing orders.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID           string `bun:"id,pk" json:"id"`
	OrderID      string `bun:"order_id,notnull" json:"order_id"`
	TicketTypeID string `bun:"ticket_type_id,notnull" json:"ticket_type_id"`
	Quantity     int    `bun:"quantity,notnull" json:"quantity"`
	UnitAmount   int64  `bun:"unit_amount,notnull" json:"unit_amount"`
}

// CheckoutRequest is the payload accepted by the checkout endpoint.
type CheckoutRequest struct {
	EventID    string         `json:"eventId"`
	Email      string         `json:"email"`
	Items      []CheckoutItem `json:"items"`
	CouponCode string         `json:"couponCode,omitempty"`
}

type CheckoutItem struct {
	TicketTypeID string `json:"ticketTypeId"`
	Quantity     int    `json:"quantity"`
}

type CheckoutResponse struct {
	URL     string `json:"url"`
	OrderID string `json:"orderId"`
}
