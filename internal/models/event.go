package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string    `bun:"id,pk" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Slug        string    `bun:"slug,notnull,unique" json:"slug"`
	Description string    `bun:"description" json:"description"`
	Overview    string    `bun:"overview" json:"overview"`
	Venue       string    `bun:"venue" json:"venue"`
	Location    string    `bun:"location" json:"location"`
	Date        string    `bun:"date,notnull" json:"date"` // YYYY-MM-DD
	Time        string    `bun:"time,notnull" json:"time"` // HH:mm, 24h
	Mode        string    `bun:"mode" json:"mode"`         // online | offline | hybrid
	Audience    string    `bun:"audience" json:"audience"`
	Organizer   string    `bun:"organizer" json:"organizer"`
	Tags        []string  `bun:"tags,array" json:"tags"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}
