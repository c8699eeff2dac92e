package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/models"
)

var (
	ErrInvalidTickets  = errors.New("invalid tickets")
	ErrSalesNotStarted = errors.New("sales not started")
	ErrSalesEnded      = errors.New("sales ended")
	ErrInvalidQuantity = errors.New("quantity must be >= 1")
	ErrPerUserLimit    = errors.New("quantity exceeds per-user limit")
	ErrSoldOut         = errors.New("not enough tickets remaining")
	ErrNotFound        = errors.New("ticket type not found")
)

type DBLayer interface {
	GetTicketTypesByIDs(ctx context.Context, ids []string) ([]models.TicketType, error)
	GetTicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error)
	GetTicketTypeByID(ctx context.Context, id string) (*models.TicketType, error)
	CreateTicketType(ctx context.Context, t models.TicketType) error
	UpdateTicketType(ctx context.Context, t models.TicketType) error
	DeleteTicketType(ctx context.Context, id string) error
	// ReserveQuantity is a conditional update: it succeeds only while
	// sold + qty stays within quantity.
	ReserveQuantity(ctx context.Context, ticketTypeID string, qty int) (bool, error)
	ReleaseQuantity(ctx context.Context, ticketTypeID string, qty int) error
	CreateIssuedTickets(ctx context.Context, issued []models.IssuedTicket) error
}

type QRGenerator interface {
	GenerateEncryptedQR(ticket models.IssuedTicket) ([]byte, error)
}

type Service struct {
	DB     DBLayer
	QR     QRGenerator
	Logger *logger.Logger
}

func NewService(db DBLayer, qr QRGenerator, log *logger.Logger) *Service {
	return &Service{DB: db, QR: qr, Logger: log}
}

// LoadForCheckout batch-loads the cart's ticket types and validates the
// selection against ownership, sales windows, quantity and per-user limits.
// The returned map is keyed by ticket type id.
func (s *Service) LoadForCheckout(ctx context.Context, eventID string, items []models.CheckoutItem, now time.Time) (map[string]*models.TicketType, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.TicketTypeID
	}

	types, err := s.DB.GetTicketTypesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load ticket types: %w", err)
	}

	byID := make(map[string]*models.TicketType, len(types))
	for i := range types {
		byID[types[i].ID] = &types[i]
	}

	for _, item := range items {
		t, ok := byID[item.TicketTypeID]
		if !ok || t.EventID != eventID {
			return nil, ErrInvalidTickets
		}
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if t.SalesStart != nil && now.Before(*t.SalesStart) {
			return nil, ErrSalesNotStarted
		}
		if t.SalesEnd != nil && now.After(*t.SalesEnd) {
			return nil, ErrSalesEnded
		}
		if t.PerUserLimit != nil && item.Quantity > *t.PerUserLimit {
			return nil, ErrPerUserLimit
		}
	}

	return byID, nil
}

// Reserve claims inventory for the cart. On partial failure every already
// reserved line is released again before returning.
func (s *Service) Reserve(ctx context.Context, items []models.CheckoutItem) error {
	reserved := make([]models.CheckoutItem, 0, len(items))
	for _, item := range items {
		ok, err := s.DB.ReserveQuantity(ctx, item.TicketTypeID, item.Quantity)
		if err != nil || !ok {
			for _, r := range reserved {
				if relErr := s.DB.ReleaseQuantity(ctx, r.TicketTypeID, r.Quantity); relErr != nil {
					s.Logger.Error("TICKETS", fmt.Sprintf("rollback release failed for %s: %v", r.TicketTypeID, relErr))
				}
			}
			if err != nil {
				return fmt.Errorf("reserve %s: %w", item.TicketTypeID, err)
			}
			return ErrSoldOut
		}
		reserved = append(reserved, item)
	}
	return nil
}

// Release returns inventory after a failed or expired order.
func (s *Service) Release(ctx context.Context, items []models.OrderItem) {
	for _, item := range items {
		if err := s.DB.ReleaseQuantity(ctx, item.TicketTypeID, item.Quantity); err != nil {
			s.Logger.Error("TICKETS", fmt.Sprintf("release failed for %s: %v", item.TicketTypeID, err))
		}
	}
}

// IssueForOrder generates one e-ticket per purchased unit once the order is
// paid. QR failures degrade to a ticket without a code rather than blocking
// the reconciliation.
func (s *Service) IssueForOrder(ctx context.Context, order *models.Order, names map[string]string) error {
	var issued []models.IssuedTicket
	now := time.Now()

	for _, item := range order.Items {
		for i := 0; i < item.Quantity; i++ {
			ticket := models.IssuedTicket{
				ID:           uuid.NewString(),
				OrderID:      order.ID,
				TicketTypeID: item.TicketTypeID,
				TicketName:   names[item.TicketTypeID],
				IssuedAt:     now,
			}
			qr, err := s.QR.GenerateEncryptedQR(ticket)
			if err != nil {
				s.Logger.Error("TICKETS", fmt.Sprintf("QR generation failed for order %s: %v", order.ID, err))
			} else {
				ticket.QRCode = qr
			}
			issued = append(issued, ticket)
		}
	}

	if len(issued) == 0 {
		return nil
	}
	if err := s.DB.CreateIssuedTickets(ctx, issued); err != nil {
		return fmt.Errorf("persist issued tickets: %w", err)
	}
	s.Logger.Info("TICKETS", fmt.Sprintf("issued %d tickets for order %s", len(issued), order.ID))
	return nil
}

// ---------------- ORGANIZER CRUD ----------------

// TicketNames resolves ticket type ids to display names.
func (s *Service) TicketNames(ctx context.Context, ids []string) (map[string]string, error) {
	types, err := s.DB.GetTicketTypesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(types))
	for _, t := range types {
		names[t.ID] = t.Name
	}
	return names, nil
}

func (s *Service) ListForEvent(ctx context.Context, eventID string) ([]models.TicketType, error) {
	return s.DB.GetTicketTypesByEvent(ctx, eventID)
}

func (s *Service) Create(ctx context.Context, t models.TicketType) (*models.TicketType, error) {
	if t.Name == "" || t.EventID == "" {
		return nil, errors.New("name and event id are required")
	}
	if t.Price < 0 {
		return nil, errors.New("price must be >= 0")
	}
	if t.Quantity < 0 {
		return nil, errors.New("quantity must be >= 0")
	}
	if t.Category == "" {
		t.Category = models.CategoryGeneral
	}
	if !models.ValidCategory(t.Category) {
		return nil, fmt.Errorf("unknown category %q", t.Category)
	}
	if t.Currency == "" {
		t.Currency = "USD"
	}

	t.ID = uuid.NewString()
	t.Sold = 0
	t.CreatedAt = time.Now()
	if err := s.DB.CreateTicketType(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) Update(ctx context.Context, t models.TicketType) error {
	if t.Price < 0 {
		return errors.New("price must be >= 0")
	}
	if t.Category != "" && !models.ValidCategory(t.Category) {
		return fmt.Errorf("unknown category %q", t.Category)
	}
	t.UpdatedAt = time.Now()
	return s.DB.UpdateTicketType(ctx, t)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.DB.DeleteTicketType(ctx, id)
}
