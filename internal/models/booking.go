package models

import (
	"regexp"
	"time"

	"github.com/uptrace/bun"
)

// Booking is a free-event RSVP. It is independent of the paid Order model:
// free signups and ticket purchases are separate attendance records.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID             string     `bun:"id,pk" json:"id"`
	EventID        string     `bun:"event_id,notnull" json:"event_id"`
	Email          string     `bun:"email,notnull" json:"email"`
	ReminderSentAt *time.Time `bun:"reminder_sent_at,nullzero" json:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at,nullzero" json:"updated_at"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
