package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/danbahadur2060/event/internal/ai"
	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/models"
	"github.com/danbahadur2060/event/internal/reminder"
	"github.com/danbahadur2060/event/internal/reminder/api"
)

type MockEventSource struct {
	mock.Mock
}

func (m *MockEventSource) ListByDates(ctx context.Context, dates []string) ([]models.Event, error) {
	args := m.Called(ctx, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

type MockBookingSource struct {
	mock.Mock
}

func (m *MockBookingSource) Unreminded(ctx context.Context, eventID string) ([]models.Booking, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingSource) MarkReminded(ctx context.Context, bookings []models.Booking, at time.Time) error {
	args := m.Called(ctx, bookings, at)
	return args.Error(0)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateReminderEmail(ctx context.Context, ev ai.EventDetails) ai.EmailDraft {
	args := m.Called(ctx, ev)
	return args.Get(0).(ai.EmailDraft)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(to []string, subject, htmlBody, textBody string) error {
	args := m.Called(to, subject, htmlBody, textBody)
	return args.Error(0)
}

func newHandler(events *MockEventSource) *api.Handler {
	svc := reminder.NewService(events, new(MockBookingSource), new(MockGenerator), new(MockSender), logger.NewLogger())
	return api.NewHandler(svc, "topsecret", logger.NewLogger())
}

func TestTriggerRemindersRejectsBadKey(t *testing.T) {
	h := newHandler(new(MockEventSource))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/reminders", nil)
	req.Header.Set("X-Cron-Key", "wrong")
	rec := httptest.NewRecorder()

	h.TriggerReminders(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTriggerRemindersRejectsMissingKey(t *testing.T) {
	h := newHandler(new(MockEventSource))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/reminders", nil)
	rec := httptest.NewRecorder()

	h.TriggerReminders(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTriggerRemindersReturnsCount(t *testing.T) {
	events := new(MockEventSource)
	events.On("ListByDates", mock.Anything, mock.Anything).Return([]models.Event{}, nil)
	h := newHandler(events)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/reminders", nil)
	req.Header.Set("X-Cron-Key", "topsecret")
	rec := httptest.NewRecorder()

	h.TriggerReminders(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OK   bool `json:"ok"`
		Sent int  `json:"sent"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, 0, body.Sent)
}
