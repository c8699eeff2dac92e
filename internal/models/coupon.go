package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

const (
	CouponPercent = "percent"
	CouponFixed   = "fixed"
)

type Coupon struct {
	bun.BaseModel `bun:"table:coupons"`

	ID        string     `bun:"id,pk" json:"id"`
	Code      string     `bun:"code,notnull,unique" json:"code"` // stored upper-case
	Type      string     `bun:"type,notnull" json:"type"`
	Amount    int64      `bun:"amount,notnull" json:"amount"` // percent 0-100, or cents when fixed
	ExpiresAt *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	MaxUses   *int       `bun:"max_uses,nullzero" json:"max_uses,omitempty"`
	UsedCount int        `bun:"used_count,notnull,default:0" json:"used_count"`
	// Optional allowlist of buyer emails the coupon is reserved for.
	TargetEmails []string `bun:"target_emails,array" json:"target_emails,omitempty"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero" json:"updated_at"`
}

// Applicable reports whether the coupon can still discount an order at the
// given instant: not expired and not usage-exhausted.
func (c *Coupon) Applicable(now time.Time) bool {
	if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
		return false
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return false
	}
	return true
}

// AllowsEmail checks the optional allowlist. An empty list admits everyone.
func (c *Coupon) AllowsEmail(email string) bool {
	if len(c.TargetEmails) == 0 {
		return true
	}
	for _, e := range c.TargetEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}
