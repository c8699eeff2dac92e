package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/models"
	"github.com/danbahadur2060/event/internal/money"
)

var (
	ErrInvalidType   = errors.New("invalid coupon type")
	ErrPercentRange  = errors.New("percent must be 0-100")
	ErrNegativeFixed = errors.New("fixed amount must be >= 0")
	ErrCodeExists    = errors.New("coupon code already exists")
	ErrNotFound      = errors.New("coupon not found")
)

type DBLayer interface {
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	ListCoupons(ctx context.Context) ([]models.Coupon, error)
	CreateCoupon(ctx context.Context, c models.Coupon) error
	UpdateCoupon(ctx context.Context, c models.Coupon) error
	DeleteCoupon(ctx context.Context, id string) error
	// IncrementUsage bumps used_count by one, but only while the coupon is
	// still applicable. Returns false when the guard rejected the update.
	IncrementUsage(ctx context.Context, code string, now time.Time) (bool, error)
}

type Service struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

// Evaluate applies the coupon to a subtotal and returns the adjusted total in
// cents. An unknown, expired or exhausted code leaves the subtotal unchanged:
// a bad code must not break checkout.
func (s *Service) Evaluate(ctx context.Context, code, buyerEmail string, subtotal int64, now time.Time) (int64, error) {
	if code == "" {
		return subtotal, nil
	}

	c, err := s.DB.GetCouponByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return 0, fmt.Errorf("fetch coupon: %w", err)
	}
	if c == nil || !c.Applicable(now) {
		return subtotal, nil
	}
	if !c.AllowsEmail(buyerEmail) {
		s.Logger.Debug("COUPON", fmt.Sprintf("code %s not valid for %s", c.Code, buyerEmail))
		return subtotal, nil
	}

	switch c.Type {
	case models.CouponPercent:
		return money.ApplyPercent(subtotal, c.Amount), nil
	case models.CouponFixed:
		return money.ApplyFixed(subtotal, c.Amount), nil
	default:
		s.Logger.Warn("COUPON", fmt.Sprintf("coupon %s has unknown type %q, skipping", c.Code, c.Type))
		return subtotal, nil
	}
}

// Redeem records one use of the coupon. Called exactly once per order, on the
// pending-to-paid transition. The increment is a conditional update so two
// racing redemptions cannot push used_count past max_uses.
func (s *Service) Redeem(ctx context.Context, code string, now time.Time) error {
	if code == "" {
		return nil
	}
	applied, err := s.DB.IncrementUsage(ctx, strings.ToUpper(strings.TrimSpace(code)), now)
	if err != nil {
		return fmt.Errorf("increment coupon usage: %w", err)
	}
	if !applied {
		s.Logger.Warn("COUPON", fmt.Sprintf("usage increment skipped for %s (missing or exhausted)", code))
	}
	return nil
}

// ---------------- ADMIN CRUD ----------------

type CreateInput struct {
	Code         string     `json:"code"`
	Type         string     `json:"type"`
	Amount       int64      `json:"amount"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	MaxUses      *int       `json:"maxUses,omitempty"`
	TargetEmails []string   `json:"targetEmails,omitempty"`
}

func validateBounds(couponType string, amount int64) error {
	switch couponType {
	case models.CouponPercent:
		if amount < 0 || amount > 100 {
			return ErrPercentRange
		}
	case models.CouponFixed:
		if amount < 0 {
			return ErrNegativeFixed
		}
	default:
		return ErrInvalidType
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Coupon, error) {
	if err := validateBounds(in.Type, in.Amount); err != nil {
		return nil, err
	}

	c := models.Coupon{
		ID:           uuid.NewString(),
		Code:         strings.ToUpper(strings.TrimSpace(in.Code)),
		Type:         in.Type,
		Amount:       in.Amount,
		ExpiresAt:    in.ExpiresAt,
		MaxUses:      in.MaxUses,
		TargetEmails: in.TargetEmails,
		CreatedAt:    time.Now(),
	}
	if c.Code == "" {
		return nil, errors.New("code is required")
	}

	if err := s.DB.CreateCoupon(ctx, c); err != nil {
		return nil, err
	}
	s.Logger.Info("COUPON", fmt.Sprintf("created coupon %s (%s %d)", c.Code, c.Type, c.Amount))
	return &c, nil
}

func (s *Service) Update(ctx context.Context, c models.Coupon) error {
	if err := validateBounds(c.Type, c.Amount); err != nil {
		return err
	}
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.UpdatedAt = time.Now()
	return s.DB.UpdateCoupon(ctx, c)
}

func (s *Service) List(ctx context.Context) ([]models.Coupon, error) {
	return s.DB.ListCoupons(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.DB.DeleteCoupon(ctx, id)
}
