package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/danbahadur2060/event/internal/models"
)

// Migrate creates any missing tables. It never drops data: the schema is
// additive so restarts are safe.
func Migrate(ctx context.Context, db *bun.DB) error {
	tables := []any{
		(*models.Event)(nil),
		(*models.TicketType)(nil),
		(*models.IssuedTicket)(nil),
		(*models.Coupon)(nil),
		(*models.Order)(nil),
		(*models.OrderItem)(nil),
		(*models.Booking)(nil),
		(*models.User)(nil),
	}

	for _, table := range tables {
		if _, err := db.NewCreateTable().Model(table).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", table, err)
		}
	}
	return nil
}
