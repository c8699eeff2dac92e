package events_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/danbahadur2060/event/internal/events"
	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/models"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateEvent(ctx context.Context, e models.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockDBLayer) UpdateEvent(ctx context.Context, e models.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDBLayer) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockDBLayer) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockDBLayer) ListEvents(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockDBLayer) ListEventsByDates(ctx context.Context, dates []string) ([]models.Event, error) {
	args := m.Called(ctx, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func newService(db *MockDBLayer) *events.Service {
	return events.NewService(db, logger.NewLogger())
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Go Conference 2026":        "go-conference-2026",
		"  Hello,   World!  ":       "hello-world",
		"--Already--Slugged--":      "already-slugged",
		"Tech & Beer: Berlin Night": "tech-beer-berlin-night",
	}
	for in, want := range cases {
		assert.Equal(t, want, events.Slugify(in))
	}
}

func TestNormalizeTime(t *testing.T) {
	cases := map[string]string{
		"9:30":      "09:30",
		"09:30":     "09:30",
		"23:45:12":  "23:45",
		"12:00 AM":  "00:00",
		"12:00 PM":  "12:00",
		"1:05 pm":   "13:05",
		"11:59  PM": "23:59",
	}
	for in, want := range cases {
		got, err := events.NormalizeTime(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := events.NormalizeTime("25:00")
	assert.ErrorIs(t, err, events.ErrInvalidTime)
	_, err = events.NormalizeTime("noonish")
	assert.ErrorIs(t, err, events.ErrInvalidTime)
}

func TestNormalizeDate(t *testing.T) {
	got, err := events.NormalizeDate("2026-09-15")
	assert.NoError(t, err)
	assert.Equal(t, "2026-09-15", got)

	got, err = events.NormalizeDate("2026-09-15T18:30:00Z")
	assert.NoError(t, err)
	assert.Equal(t, "2026-09-15", got)

	_, err = events.NormalizeDate("next tuesday")
	assert.ErrorIs(t, err, events.ErrInvalidDate)
}

func TestCreateNormalizesAndSlugs(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockDB.On("CreateEvent", mock.Anything, mock.MatchedBy(func(e models.Event) bool {
		return e.Slug == "gophercon-eu" && e.Date == "2026-10-01" && e.Time == "18:30"
	})).Return(nil)

	e, err := newService(mockDB).Create(context.Background(), events.EventInput{
		Title: "GopherCon EU",
		Date:  "2026-10-01",
		Time:  "6:30 PM",
	})
	assert.NoError(t, err)
	assert.Equal(t, "gophercon-eu", e.Slug)
	assert.NotEmpty(t, e.ID)
	mockDB.AssertExpectations(t)
}

func TestCreateRequiresCoreFields(t *testing.T) {
	mockDB := new(MockDBLayer)

	_, err := newService(mockDB).Create(context.Background(), events.EventInput{Date: "2026-10-01", Time: "10:00"})
	assert.ErrorIs(t, err, events.ErrMissingInfo)
	mockDB.AssertNotCalled(t, "CreateEvent")
}

func TestUpdateRetitleRegeneratesSlug(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockDB.On("GetEventByID", mock.Anything, "e-1").Return(&models.Event{
		ID: "e-1", Title: "Old Title", Slug: "old-title", Date: "2026-10-01", Time: "10:00",
	}, nil)
	mockDB.On("UpdateEvent", mock.Anything, mock.MatchedBy(func(e models.Event) bool {
		return e.Slug == "new-title"
	})).Return(nil)

	e, err := newService(mockDB).Update(context.Background(), "e-1", events.EventInput{Title: "New Title"})
	assert.NoError(t, err)
	assert.Equal(t, "new-title", e.Slug)
}

func TestGetBySlugMissing(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockDB.On("GetEventBySlug", mock.Anything, "ghost").Return(nil, nil)

	_, err := newService(mockDB).GetBySlug(context.Background(), "ghost")
	assert.ErrorIs(t, err, events.ErrNotFound)
}
