package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/models"
	"github.com/danbahadur2060/event/internal/money"
)

var (
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrNotFound            = errors.New("order not found")
	ErrProviderUnavailable = errors.New("payment provider not configured")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

type DBLayer interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	GetOrderByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) error
	SetPaymentDetails(ctx context.Context, id, paymentIntentID, invoiceURL string) error
	ListOrders(ctx context.Context) ([]models.Order, error)
}

type Inventory interface {
	LoadForCheckout(ctx context.Context, eventID string, items []models.CheckoutItem, now time.Time) (map[string]*models.TicketType, error)
	Reserve(ctx context.Context, items []models.CheckoutItem) error
	Release(ctx context.Context, items []models.OrderItem)
	IssueForOrder(ctx context.Context, o *models.Order, names map[string]string) error
	TicketNames(ctx context.Context, ids []string) (map[string]string, error)
}

type CouponEvaluator interface {
	Evaluate(ctx context.Context, code, buyerEmail string, subtotal int64, now time.Time) (int64, error)
	Redeem(ctx context.Context, code string, now time.Time) error
}

// PaymentProvider is the narrow surface this service needs from Stripe.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (*CheckoutSession, error)
	ExpireSession(ctx context.Context, sessionID string) error
}

type CheckoutSessionParams struct {
	CustomerEmail string
	Currency      string
	LineItems     []SessionLineItem
	EventID       string
	OrderID       string
	SuccessURL    string
	CancelURL     string
}

type SessionLineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
}

type CheckoutSession struct {
	ID  string
	URL string
}

type Publisher interface {
	PublishOrderCreated(o models.Order) error
	PublishOrderPaid(o models.Order) error
	PublishOrderFailed(o models.Order) error
	PublishOrderRefunded(o models.Order) error
}

// DedupLocker short-circuits repeated webhook deliveries of the same event.
type DedupLocker interface {
	AcquireEventLock(ctx context.Context, eventID string) (bool, error)
	ReleaseEventLock(ctx context.Context, eventID string) error
}

type OrderService struct {
	DB        DBLayer
	Inventory Inventory
	Coupons   CouponEvaluator
	Payments  PaymentProvider
	Publisher Publisher
	Dedup     DedupLocker
	Logger    *logger.Logger

	SuccessURL    string
	CancelURL     string
	WebhookSecret string
}

func NewOrderService(db DBLayer, inv Inventory, coupons CouponEvaluator, payments PaymentProvider,
	pub Publisher, dedup DedupLocker, log *logger.Logger, appURL, webhookSecret string) *OrderService {
	return &OrderService{
		DB:            db,
		Inventory:     inv,
		Coupons:       coupons,
		Payments:      payments,
		Publisher:     pub,
		Dedup:         dedup,
		Logger:        log,
		SuccessURL:    appURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     appURL + "/checkout/cancel",
		WebhookSecret: webhookSecret,
	}
}

// Checkout prices the cart, reserves inventory, opens a hosted payment
// session and persists the pending order. Pricing is frozen here: later
// ticket price edits never touch this order.
func (s *OrderService) Checkout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if req.EventID == "" || len(req.Items) == 0 || !models.ValidEmail(req.Email) {
		return nil, ErrInvalidPayload
	}

	now := time.Now()

	types, err := s.Inventory.LoadForCheckout(ctx, req.EventID, req.Items, now)
	if err != nil {
		return nil, err
	}

	if err := s.Inventory.Reserve(ctx, req.Items); err != nil {
		return nil, err
	}
	releaseReserved := func() {
		items := make([]models.OrderItem, len(req.Items))
		for i, it := range req.Items {
			items[i] = models.OrderItem{TicketTypeID: it.TicketTypeID, Quantity: it.Quantity}
		}
		s.Inventory.Release(ctx, items)
	}

	unitAmounts := make([]int64, len(req.Items))
	quantities := make([]int, len(req.Items))
	lineItems := make([]SessionLineItem, len(req.Items))
	currency := "USD"
	for i, item := range req.Items {
		t := types[item.TicketTypeID]
		unitAmounts[i] = t.Price
		quantities[i] = item.Quantity
		lineItems[i] = SessionLineItem{Name: t.Name, UnitAmount: t.Price, Quantity: item.Quantity}
		if t.Currency != "" {
			currency = t.Currency
		}
	}
	subtotal := money.Subtotal(unitAmounts, quantities)

	total, err := s.Coupons.Evaluate(ctx, req.CouponCode, req.Email, subtotal, now)
	if err != nil {
		releaseReserved()
		return nil, fmt.Errorf("evaluate coupon: %w", err)
	}

	orderID := uuid.NewString()

	session, err := s.Payments.CreateCheckoutSession(ctx, CheckoutSessionParams{
		CustomerEmail: req.Email,
		Currency:      currency,
		LineItems:     lineItems,
		EventID:       req.EventID,
		OrderID:       orderID,
		SuccessURL:    s.SuccessURL,
		CancelURL:     s.CancelURL,
	})
	if err != nil {
		releaseReserved()
		if errors.Is(err, ErrProviderUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("create payment session: %w", err)
	}

	order := &models.Order{
		ID:              orderID,
		EventID:         req.EventID,
		Email:           req.Email,
		Currency:        currency,
		TotalAmount:     total,
		CouponCode:      req.CouponCode,
		Status:          models.OrderPending,
		StripeSessionID: session.ID,
		CreatedAt:       now,
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			ID:           uuid.NewString(),
			OrderID:      orderID,
			TicketTypeID: item.TicketTypeID,
			Quantity:     item.Quantity,
			UnitAmount:   types[item.TicketTypeID].Price,
		})
	}

	if err := s.DB.CreateOrder(ctx, order); err != nil {
		// The hosted session already exists; expire it so the buyer cannot
		// pay for an order we failed to record.
		if expErr := s.Payments.ExpireSession(ctx, session.ID); expErr != nil {
			s.Logger.Error("ORDER", fmt.Sprintf("failed to expire session %s after persist error: %v", session.ID, expErr))
		}
		releaseReserved()
		return nil, fmt.Errorf("persist order: %w", err)
	}

	if err := s.Publisher.PublishOrderCreated(*order); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("publish order created: %v", err))
	}

	s.Logger.Info("ORDER", fmt.Sprintf("created pending order %s (total %d %s)", orderID, total, currency))
	return &models.CheckoutResponse{URL: session.URL, OrderID: orderID}, nil
}

// ---------------- STATE MACHINE ----------------

// MarkPaid settles the order. Idempotent: a second delivery for an already
// paid order is a no-op.
func (s *OrderService) MarkPaid(ctx context.Context, o *models.Order, paymentIntentID, invoiceURL string) error {
	if o.Status == models.OrderPaid {
		s.Logger.Info("ORDER", fmt.Sprintf("order %s already paid, skipping", o.ID))
		return nil
	}
	if !models.ValidTransition(o.Status, models.OrderPaid) {
		return fmt.Errorf("%w: %s -> paid", ErrInvalidTransition, o.Status)
	}

	if err := s.DB.SetPaymentDetails(ctx, o.ID, paymentIntentID, invoiceURL); err != nil {
		return fmt.Errorf("record payment details: %w", err)
	}
	if err := s.DB.UpdateOrderStatus(ctx, o.ID, models.OrderPaid); err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	o.Status = models.OrderPaid
	o.PaymentIntentID = paymentIntentID
	o.InvoiceURL = invoiceURL

	// One redemption per settled order.
	if err := s.Coupons.Redeem(ctx, o.CouponCode, time.Now()); err != nil {
		s.Logger.Error("COUPON", fmt.Sprintf("redeem for order %s: %v", o.ID, err))
	}

	ids := make([]string, len(o.Items))
	for i, item := range o.Items {
		ids[i] = item.TicketTypeID
	}
	names, err := s.Inventory.TicketNames(ctx, ids)
	if err != nil {
		s.Logger.Error("TICKETS", fmt.Sprintf("resolve ticket names for order %s: %v", o.ID, err))
		names = map[string]string{}
	}
	if err := s.Inventory.IssueForOrder(ctx, o, names); err != nil {
		s.Logger.Error("TICKETS", fmt.Sprintf("issue tickets for order %s: %v", o.ID, err))
	}

	if err := s.Publisher.PublishOrderPaid(*o); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("publish order paid: %v", err))
	}
	s.Logger.Info("ORDER", fmt.Sprintf("order %s marked paid", o.ID))
	return nil
}

// MarkFailed expires a pending order and returns its inventory. A paid order
// is never demoted.
func (s *OrderService) MarkFailed(ctx context.Context, o *models.Order) error {
	if o.Status != models.OrderPending {
		s.Logger.Info("ORDER", fmt.Sprintf("order %s is %s, not marking failed", o.ID, o.Status))
		return nil
	}
	if err := s.DB.UpdateOrderStatus(ctx, o.ID, models.OrderFailed); err != nil {
		return fmt.Errorf("mark order failed: %w", err)
	}
	o.Status = models.OrderFailed

	s.Inventory.Release(ctx, o.Items)

	if err := s.Publisher.PublishOrderFailed(*o); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("publish order failed: %v", err))
	}
	s.Logger.Info("ORDER", fmt.Sprintf("order %s marked failed (session expired)", o.ID))
	return nil
}

// MarkRefunded moves a paid order to refunded or partial_refunded.
func (s *OrderService) MarkRefunded(ctx context.Context, o *models.Order, full bool) error {
	target := models.OrderPartialRefunded
	if full {
		target = models.OrderRefunded
	}
	if o.Status == target {
		return nil
	}
	if !models.ValidTransition(o.Status, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
	}
	if err := s.DB.UpdateOrderStatus(ctx, o.ID, target); err != nil {
		return fmt.Errorf("mark order %s: %w", target, err)
	}
	o.Status = target

	if err := s.Publisher.PublishOrderRefunded(*o); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("publish order refunded: %v", err))
	}
	s.Logger.Info("ORDER", fmt.Sprintf("order %s marked %s", o.ID, target))
	return nil
}

// ---------------- ADMIN ----------------

func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.DB.GetOrderByID(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.DB.ListOrders(ctx)
}

// OverrideStatus is the manual admin escape hatch. It walks the same state
// machine as the webhook path so an operator cannot create an impossible
// order.
func (s *OrderService) OverrideStatus(ctx context.Context, id, status string) error {
	o, err := s.DB.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}
	if o == nil {
		return ErrNotFound
	}

	switch status {
	case models.OrderPaid:
		return s.MarkPaid(ctx, o, o.PaymentIntentID, o.InvoiceURL)
	case models.OrderFailed:
		if o.Status != models.OrderPending {
			return fmt.Errorf("%w: %s -> failed", ErrInvalidTransition, o.Status)
		}
		return s.MarkFailed(ctx, o)
	case models.OrderRefunded:
		return s.MarkRefunded(ctx, o, true)
	case models.OrderPartialRefunded:
		return s.MarkRefunded(ctx, o, false)
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
}
