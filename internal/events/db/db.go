package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/danbahadur2060/event/internal/events"
	"github.com/danbahadur2060/event/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func New(b *bun.DB) *DB {
	return &DB{Bun: b}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

func (d *DB) CreateEvent(ctx context.Context, e models.Event) error {
	_, err := d.Bun.NewInsert().Model(&e).Exec(ctx)
	if isUniqueViolation(err) {
		return events.ErrSlugExists
	}
	return err
}

func (d *DB) UpdateEvent(ctx context.Context, e models.Event) error {
	res, err := d.Bun.NewUpdate().Model(&e).WherePK().Exec(ctx)
	if isUniqueViolation(err) {
		return events.ErrSlugExists
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("event %s not found", e.ID)
	}
	return nil
}

func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().Model((*models.Event)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	err := d.Bun.NewSelect().Model(&e).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (d *DB) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	var e models.Event
	err := d.Bun.NewSelect().Model(&e).Where("slug = ?", slug).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	var evs []models.Event
	err := d.Bun.NewSelect().Model(&evs).Order("date ASC", "time ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return evs, nil
}

// ListEventsByDates returns events whose calendar date matches any of the
// given YYYY-MM-DD values.
func (d *DB) ListEventsByDates(ctx context.Context, dates []string) ([]models.Event, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	var evs []models.Event
	err := d.Bun.NewSelect().Model(&evs).Where("date IN (?)", bun.In(dates)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return evs, nil
}
