package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Roles recognized by the RBAC allow-lists. Superadmin bypasses every check.
const (
	RoleAttendee   = "attendee"
	RoleOrganizer  = "organizer"
	RoleSpeaker    = "speaker"
	RoleExhibitor  = "exhibitor"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        string    `bun:"id,pk" json:"id"`
	Email     string    `bun:"email,notnull,unique" json:"email"`
	Name      string    `bun:"name" json:"name"`
	Role      string    `bun:"role,notnull" json:"role"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}
