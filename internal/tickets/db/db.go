package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/danbahadur2060/event/internal/models"
	"github.com/danbahadur2060/event/internal/tickets"
)

type DB struct {
	Bun *bun.DB
}

func New(b *bun.DB) *DB {
	return &DB{Bun: b}
}

func (d *DB) GetTicketTypesByIDs(ctx context.Context, ids []string) ([]models.TicketType, error) {
	if len(ids) == 0 {
		return []models.TicketType{}, nil
	}
	var types []models.TicketType
	err := d.Bun.NewSelect().
		Model(&types).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return types, nil
}

func (d *DB) GetTicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error) {
	var types []models.TicketType
	err := d.Bun.NewSelect().
		Model(&types).
		Where("event_id = ?", eventID).
		Order("created_at").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return types, nil
}

func (d *DB) GetTicketTypeByID(ctx context.Context, id string) (*models.TicketType, error) {
	var t models.TicketType
	err := d.Bun.NewSelect().
		Model(&t).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tickets.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (d *DB) CreateTicketType(ctx context.Context, t models.TicketType) error {
	_, err := d.Bun.NewInsert().Model(&t).Exec(ctx)
	return err
}

func (d *DB) UpdateTicketType(ctx context.Context, t models.TicketType) error {
	res, err := d.Bun.NewUpdate().
		Model(&t).
		Column("name", "category", "price", "currency", "quantity", "sales_start", "sales_end", "per_user_limit", "updated_at").
		Where("id = ?", t.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tickets.ErrNotFound
	}
	return nil
}

func (d *DB) DeleteTicketType(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.TicketType)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tickets.ErrNotFound
	}
	return nil
}

// ReserveQuantity increments sold only while the guard holds, so two
// concurrent checkouts cannot oversell: the database serializes the check
// and the write in one statement.
func (d *DB) ReserveQuantity(ctx context.Context, ticketTypeID string, qty int) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.TicketType)(nil)).
		Set("sold = sold + ?", qty).
		Where("id = ?", ticketTypeID).
		Where("sold + ? <= quantity", qty).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *DB) ReleaseQuantity(ctx context.Context, ticketTypeID string, qty int) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.TicketType)(nil)).
		Set("sold = CASE WHEN sold >= ? THEN sold - ? ELSE 0 END", qty, qty).
		Where("id = ?", ticketTypeID).
		Exec(ctx)
	return err
}

func (d *DB) CreateIssuedTickets(ctx context.Context, issued []models.IssuedTicket) error {
	_, err := d.Bun.NewInsert().Model(&issued).Exec(ctx)
	return err
}
