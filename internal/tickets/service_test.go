package tickets_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/models"
	"github.com/danbahadur2060/event/internal/tickets"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) GetTicketTypesByIDs(ctx context.Context, ids []string) ([]models.TicketType, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TicketType), args.Error(1)
}

func (m *MockDBLayer) GetTicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TicketType), args.Error(1)
}

func (m *MockDBLayer) GetTicketTypeByID(ctx context.Context, id string) (*models.TicketType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketType), args.Error(1)
}

func (m *MockDBLayer) CreateTicketType(ctx context.Context, t models.TicketType) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockDBLayer) UpdateTicketType(ctx context.Context, t models.TicketType) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteTicketType(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDBLayer) ReserveQuantity(ctx context.Context, ticketTypeID string, qty int) (bool, error) {
	args := m.Called(ctx, ticketTypeID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) ReleaseQuantity(ctx context.Context, ticketTypeID string, qty int) error {
	args := m.Called(ctx, ticketTypeID, qty)
	return args.Error(0)
}

func (m *MockDBLayer) CreateIssuedTickets(ctx context.Context, issued []models.IssuedTicket) error {
	args := m.Called(ctx, issued)
	return args.Error(0)
}

type MockQR struct {
	mock.Mock
}

func (m *MockQR) GenerateEncryptedQR(ticket models.IssuedTicket) ([]byte, error) {
	args := m.Called(ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func newService(db *MockDBLayer, qr *MockQR) *tickets.Service {
	return tickets.NewService(db, qr, logger.NewLogger())
}

func timePtr(v time.Time) *time.Time { return &v }
func intPtr(v int) *int              { return &v }

func TestLoadForCheckoutValidCart(t *testing.T) {
	mockDB := new(MockDBLayer)
	now := time.Now()

	mockDB.On("GetTicketTypesByIDs", mock.Anything, []string{"tt-1"}).Return([]models.TicketType{
		{ID: "tt-1", EventID: "ev-1", Name: "GA", Price: 5000, Currency: "USD", Quantity: 100},
	}, nil)

	byID, err := newService(mockDB, new(MockQR)).LoadForCheckout(context.Background(), "ev-1",
		[]models.CheckoutItem{{TicketTypeID: "tt-1", Quantity: 2}}, now)
	assert.NoError(t, err)
	assert.Len(t, byID, 1)
	assert.Equal(t, int64(5000), byID["tt-1"].Price)
}

func TestLoadForCheckoutRejectsForeignTicket(t *testing.T) {
	mockDB := new(MockDBLayer)

	mockDB.On("GetTicketTypesByIDs", mock.Anything, mock.Anything).Return([]models.TicketType{
		{ID: "tt-1", EventID: "other-event", Quantity: 10},
	}, nil)

	_, err := newService(mockDB, new(MockQR)).LoadForCheckout(context.Background(), "ev-1",
		[]models.CheckoutItem{{TicketTypeID: "tt-1", Quantity: 1}}, time.Now())
	assert.ErrorIs(t, err, tickets.ErrInvalidTickets)
}

func TestLoadForCheckoutRejectsUnknownTicket(t *testing.T) {
	mockDB := new(MockDBLayer)

	mockDB.On("GetTicketTypesByIDs", mock.Anything, mock.Anything).Return([]models.TicketType{}, nil)

	_, err := newService(mockDB, new(MockQR)).LoadForCheckout(context.Background(), "ev-1",
		[]models.CheckoutItem{{TicketTypeID: "missing", Quantity: 1}}, time.Now())
	assert.ErrorIs(t, err, tickets.ErrInvalidTickets)
}

func TestLoadForCheckoutSalesWindows(t *testing.T) {
	now := time.Now()

	t.Run("sales not started", func(t *testing.T) {
		mockDB := new(MockDBLayer)
		mockDB.On("GetTicketTypesByIDs", mock.Anything, mock.Anything).Return([]models.TicketType{
			{ID: "tt-1", EventID: "ev-1", Quantity: 10, SalesStart: timePtr(now.Add(time.Hour))},
		}, nil)

		_, err := newService(mockDB, new(MockQR)).LoadForCheckout(context.Background(), "ev-1",
			[]models.CheckoutItem{{TicketTypeID: "tt-1", Quantity: 1}}, now)
		assert.ErrorIs(t, err, tickets.ErrSalesNotStarted)
	})

	t.Run("sales ended", func(t *testing.T) {
		mockDB := new(MockDBLayer)
		mockDB.On("GetTicketTypesByIDs", mock.Anything, mock.Anything).Return([]models.TicketType{
			{ID: "tt-1", EventID: "ev-1", Quantity: 10, SalesEnd: timePtr(now.Add(-time.Hour))},
		}, nil)

		_, err := newService(mockDB, new(MockQR)).LoadForCheckout(context.Background(), "ev-1",
			[]models.CheckoutItem{{TicketTypeID: "tt-1", Quantity: 1}}, now)
		assert.ErrorIs(t, err, tickets.ErrSalesEnded)
	})
}

func TestLoadForCheckoutRejectsBadQuantity(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockDB.On("GetTicketTypesByIDs", mock.Anything, mock.Anything).Return([]models.TicketType{
		{ID: "tt-1", EventID: "ev-1", Quantity: 10},
	}, nil)

	_, err := newService(mockDB, new(MockQR)).LoadForCheckout(context.Background(), "ev-1",
		[]models.CheckoutItem{{TicketTypeID: "tt-1", Quantity: 0}}, time.Now())
	assert.ErrorIs(t, err, tickets.ErrInvalidQuantity)
}

func TestLoadForCheckoutPerUserLimit(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockDB.On("GetTicketTypesByIDs", mock.Anything, mock.Anything).Return([]models.TicketType{
		{ID: "tt-1", EventID: "ev-1", Quantity: 10, PerUserLimit: intPtr(2)},
	}, nil)

	_, err := newService(mockDB, new(MockQR)).LoadForCheckout(context.Background(), "ev-1",
		[]models.CheckoutItem{{TicketTypeID: "tt-1", Quantity: 3}}, time.Now())
	assert.ErrorIs(t, err, tickets.ErrPerUserLimit)
}

func TestReserveRollsBackOnSoldOut(t *testing.T) {
	mockDB := new(MockDBLayer)

	mockDB.On("ReserveQuantity", mock.Anything, "tt-1", 2).Return(true, nil)
	mockDB.On("ReserveQuantity", mock.Anything, "tt-2", 1).Return(false, nil)
	mockDB.On("ReleaseQuantity", mock.Anything, "tt-1", 2).Return(nil)

	err := newService(mockDB, new(MockQR)).Reserve(context.Background(), []models.CheckoutItem{
		{TicketTypeID: "tt-1", Quantity: 2},
		{TicketTypeID: "tt-2", Quantity: 1},
	})
	assert.ErrorIs(t, err, tickets.ErrSoldOut)
	mockDB.AssertExpectations(t)
}

func TestIssueForOrderGeneratesPerUnit(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockQR := new(MockQR)

	order := &models.Order{
		ID:     "order-1",
		Status: models.OrderPaid,
		Items: []models.OrderItem{
			{TicketTypeID: "tt-1", Quantity: 2, UnitAmount: 5000},
		},
	}

	mockQR.On("GenerateEncryptedQR", mock.Anything).Return([]byte{0x89}, nil).Twice()
	mockDB.On("CreateIssuedTickets", mock.Anything, mock.MatchedBy(func(issued []models.IssuedTicket) bool {
		return len(issued) == 2 && issued[0].TicketName == "GA"
	})).Return(nil)

	err := newService(mockDB, mockQR).IssueForOrder(context.Background(), order, map[string]string{"tt-1": "GA"})
	assert.NoError(t, err)
	mockDB.AssertExpectations(t)
	mockQR.AssertExpectations(t)
}
