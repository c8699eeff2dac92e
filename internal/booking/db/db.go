package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/danbahadur2060/event/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func New(b *bun.DB) *DB {
	return &DB{Bun: b}
}

func (d *DB) CreateBooking(ctx context.Context, b models.Booking) error {
	_, err := d.Bun.NewInsert().Model(&b).Exec(ctx)
	return err
}

func (d *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().Model(&bookings).Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (d *DB) ListUnremindedByEvent(ctx context.Context, eventID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("event_id = ?", eventID).
		Where("reminder_sent_at IS NULL").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (d *DB) MarkReminded(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("reminder_sent_at = ?", at).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return err
}
