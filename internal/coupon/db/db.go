package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/danbahadur2060/event/internal/coupon"
	"github.com/danbahadur2060/event/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func New(b *bun.DB) *DB {
	return &DB{Bun: b}
}

// GetCouponByCode returns nil, nil when no coupon matches: the evaluator
// treats an unknown code as "no discount", not an error.
func (d *DB) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	err := d.Bun.NewSelect().
		Model(&c).
		Where("code = ?", code).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (d *DB) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := d.Bun.NewSelect().
		Model(&coupons).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return coupons, nil
}

func (d *DB) CreateCoupon(ctx context.Context, c models.Coupon) error {
	_, err := d.Bun.NewInsert().Model(&c).Exec(ctx)
	if err != nil && isUniqueViolation(err) {
		return coupon.ErrCodeExists
	}
	return err
}

func (d *DB) UpdateCoupon(ctx context.Context, c models.Coupon) error {
	res, err := d.Bun.NewUpdate().
		Model(&c).
		Column("type", "amount", "expires_at", "max_uses", "target_emails", "updated_at").
		Where("id = ?", c.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

func (d *DB) DeleteCoupon(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Coupon)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

// IncrementUsage is the redemption write. The applicability predicate is
// repeated inside the statement so the database arbitrates concurrent
// redemptions: used_count can never pass max_uses.
func (d *DB) IncrementUsage(ctx context.Context, code string, now time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Coupon)(nil)).
		Set("used_count = used_count + 1").
		Set("updated_at = ?", now).
		Where("code = ?", code).
		Where("expires_at IS NULL OR expires_at >= ?", now).
		Where("max_uses IS NULL OR used_count < max_uses").
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

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
