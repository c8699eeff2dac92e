package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danbahadur2060/event/internal/events"
	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/models"
)

var (
	ErrMissingFields = errors.New("eventId and email are required")
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrEventUnknown  = errors.New("event not found")
)

type DBLayer interface {
	CreateBooking(ctx context.Context, b models.Booking) error
	ListBookings(ctx context.Context) ([]models.Booking, error)
	ListUnremindedByEvent(ctx context.Context, eventID string) ([]models.Booking, error)
	MarkReminded(ctx context.Context, ids []string, at time.Time) error
}

// EventChecker confirms the target event exists before an RSVP is taken.
type EventChecker interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
}

type Service struct {
	DB     DBLayer
	Events EventChecker
	Logger *logger.Logger
}

func NewService(db DBLayer, ev EventChecker, log *logger.Logger) *Service {
	return &Service{DB: db, Events: ev, Logger: log}
}

func (s *Service) Create(ctx context.Context, eventID, email string) (*models.Booking, error) {
	if eventID == "" || email == "" {
		return nil, ErrMissingFields
	}
	if !models.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if _, err := s.Events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return nil, ErrEventUnknown
		}
		return nil, err
	}

	b := models.Booking{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := s.DB.CreateBooking(ctx, b); err != nil {
		return nil, err
	}

	s.Logger.Info("BOOKING", fmt.Sprintf("created booking %s for event %s", b.ID, eventID))
	return &b, nil
}

func (s *Service) List(ctx context.Context) ([]models.Booking, error) {
	return s.DB.ListBookings(ctx)
}

// Unreminded returns RSVPs for the event that have not yet received the
// reminder email.
func (s *Service) Unreminded(ctx context.Context, eventID string) ([]models.Booking, error) {
	return s.DB.ListUnremindedByEvent(ctx, eventID)
}

// MarkReminded stamps the whole batch in one statement.
func (s *Service) MarkReminded(ctx context.Context, bookings []models.Booking, at time.Time) error {
	if len(bookings) == 0 {
		return nil
	}
	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	return s.DB.MarkReminded(ctx, ids, at)
}
