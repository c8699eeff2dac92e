package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/danbahadur2060/event/internal/booking"
	"github.com/danbahadur2060/event/internal/events"
	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/models"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateBooking(ctx context.Context, b models.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockDBLayer) ListBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockDBLayer) ListUnremindedByEvent(ctx context.Context, eventID string) ([]models.Booking, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockDBLayer) MarkReminded(ctx context.Context, ids []string, at time.Time) error {
	args := m.Called(ctx, ids, at)
	return args.Error(0)
}

type MockEventChecker struct {
	mock.Mock
}

func (m *MockEventChecker) GetByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func newService(db *MockDBLayer, ev *MockEventChecker) *booking.Service {
	return booking.NewService(db, ev, logger.NewLogger())
}

func TestCreateBooking(t *testing.T) {
	db := new(MockDBLayer)
	ev := new(MockEventChecker)

	ev.On("GetByID", mock.Anything, "e-1").Return(&models.Event{ID: "e-1"}, nil)
	db.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b models.Booking) bool {
		return b.EventID == "e-1" && b.Email == "rsvp@example.com" && b.ID != ""
	})).Return(nil)

	b, err := newService(db, ev).Create(context.Background(), "e-1", "rsvp@example.com")
	assert.NoError(t, err)
	assert.Nil(t, b.ReminderSentAt)
	db.AssertExpectations(t)
}

func TestCreateBookingValidation(t *testing.T) {
	db := new(MockDBLayer)
	ev := new(MockEventChecker)
	svc := newService(db, ev)

	_, err := svc.Create(context.Background(), "", "rsvp@example.com")
	assert.ErrorIs(t, err, booking.ErrMissingFields)

	_, err = svc.Create(context.Background(), "e-1", "not an email")
	assert.ErrorIs(t, err, booking.ErrInvalidEmail)

	db.AssertNotCalled(t, "CreateBooking")
}

func TestCreateBookingUnknownEvent(t *testing.T) {
	db := new(MockDBLayer)
	ev := new(MockEventChecker)
	ev.On("GetByID", mock.Anything, "ghost").Return(nil, events.ErrNotFound)

	_, err := newService(db, ev).Create(context.Background(), "ghost", "rsvp@example.com")
	assert.ErrorIs(t, err, booking.ErrEventUnknown)
	db.AssertNotCalled(t, "CreateBooking")
}

func TestMarkRemindedBatchesIDs(t *testing.T) {
	db := new(MockDBLayer)
	ev := new(MockEventChecker)
	at := time.Now()

	db.On("MarkReminded", mock.Anything, []string{"b-1", "b-2"}, at).Return(nil)

	bookings := []models.Booking{{ID: "b-1"}, {ID: "b-2"}}
	err := newService(db, ev).MarkReminded(context.Background(), bookings, at)
	assert.NoError(t, err)
	db.AssertExpectations(t)
}

func TestMarkRemindedEmptyBatchSkipsDB(t *testing.T) {
	db := new(MockDBLayer)
	ev := new(MockEventChecker)

	err := newService(db, ev).MarkReminded(context.Background(), nil, time.Now())
	assert.NoError(t, err)
	db.AssertNotCalled(t, "MarkReminded")
}
