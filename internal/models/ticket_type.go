package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ticket categories an organizer can sell.
const (
	CategoryGeneral  = "general"
	CategoryVIP      = "vip"
	CategoryStudent  = "student"
	CategoryGroup    = "group"
	CategoryComp     = "comp"
	CategoryDonation = "donation"
	CategorySponsor  = "sponsor"
)

func ValidCategory(c string) bool {
	switch c {
	case CategoryGeneral, CategoryVIP, CategoryStudent, CategoryGroup, CategoryComp, CategoryDonation, CategorySponsor:
		return true
	}
	return false
}

type TicketType struct {
	bun.BaseModel `bun:"table:ticket_types"`

	ID           string     `bun:"id,pk" json:"id"`
	EventID      string     `bun:"event_id,notnull" json:"event_id"`
	Name         string     `bun:"name,notnull" json:"name"`
	Category     string     `bun:"category,notnull" json:"category"`
	Price        int64      `bun:"price,notnull" json:"price"` // minor currency units
	Currency     string     `bun:"currency,notnull" json:"currency"`
	Quantity     int        `bun:"quantity,notnull" json:"quantity"`
	Sold         int        `bun:"sold,notnull,default:0" json:"sold"`
	SalesStart   *time.Time `bun:"sales_start,nullzero" json:"sales_start,omitempty"`
	SalesEnd     *time.Time `bun:"sales_end,nullzero" json:"sales_end,omitempty"`
	PerUserLimit *int       `bun:"per_user_limit,nullzero" json:"per_user_limit,omitempty"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time  `bun:"updated_at,nullzero" json:"updated_at"`
}

// Remaining reports how many tickets are still reservable.
func (t *TicketType) Remaining() int {
	if t.Sold > t.Quantity {
		return 0
	}
	return t.Quantity - t.Sold
}

// IssuedTicket is an e-ticket generated once an order is paid. The QR code
// carries an encrypted copy of the ticket payload for gate validation.
type IssuedTicket struct {
	bun.BaseModel `bun:"table:issued_tickets"`

	ID           string    `bun:"id,pk" json:"id"`
	OrderID      string    `bun:"order_id,notnull" json:"order_id"`
	TicketTypeID string    `bun:"ticket_type_id,notnull" json:"ticket_type_id"`
	TicketName   string    `bun:"ticket_name,notnull" json:"ticket_name"`
	QRCode       []byte    `bun:"qr_code" json:"qr_code,omitempty"`
	IssuedAt     time.Time `bun:"issued_at,notnull" json:"issued_at"`
}
