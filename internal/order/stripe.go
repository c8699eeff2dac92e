package order

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/danbahadur2060/event/internal/logger"
)

// StripeProvider implements PaymentProvider on top of the Stripe API client.
type StripeProvider struct {
	client *client.API
	log    *logger.Logger
}

func NewStripeProvider(secretKey string, log *logger.Logger) (*StripeProvider, error) {
	if secretKey == "" {
		log.Error("STRIPE", "Stripe secret key is not configured")
		return nil, ErrProviderUnavailable
	}
	sc := client.New(secretKey, nil)
	log.Info("STRIPE", "Stripe client initialized successfully")
	return &StripeProvider{client: sc, log: log}, nil
}

// CreateCheckoutSession opens a hosted payment page for the cart. The order
// and event IDs ride along as metadata so webhook deliveries can be traced
// back even without the session lookup.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, len(params.LineItems))
	for i, li := range params.LineItems {
		lineItems[i] = &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(params.Currency)),
				UnitAmount: stripe.Int64(li.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Name),
				},
			},
			Quantity: stripe.Int64(int64(li.Quantity)),
		}
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(params.CustomerEmail),
		LineItems:     lineItems,
		SuccessURL:    stripe.String(params.SuccessURL),
		CancelURL:     stripe.String(params.CancelURL),
		InvoiceCreation: &stripe.CheckoutSessionInvoiceCreationParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"eventId": params.EventID,
			"orderId": params.OrderID,
		},
	}
	sessionParams.Context = ctx

	sess, err := p.client.CheckoutSessions.New(sessionParams)
	if err != nil {
		p.log.Error("STRIPE", fmt.Sprintf("Failed to create checkout session: %v", err))
		return nil, err
	}

	p.log.Info("STRIPE", fmt.Sprintf("Created checkout session %s for order %s", sess.ID, params.OrderID))
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (p *StripeProvider) ExpireSession(ctx context.Context, sessionID string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx
	_, err := p.client.CheckoutSessions.Expire(sessionID, params)
	return err
}

// WebhookError carries both a client-safe message and the detailed internal
// one so handlers never leak processing details to Stripe.
type WebhookError struct {
	Category      string // "configuration", "validation", "processing"
	StatusCode    int
	PublicError   string
	InternalError string
	OriginalErr   error
}

func (e *WebhookError) Error() string {
	return e.InternalError
}

// HandleStripeWebhook verifies and reconciles a Stripe webhook delivery.
// Every branch is idempotent: Stripe retries deliveries and may send the
// same event more than once.
func (s *OrderService) HandleStripeWebhook(r *http.Request) error {
	if s.WebhookSecret == "" {
		s.Logger.Error("WEBHOOK", "Stripe webhook secret is not configured")
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Missing webhook secret",
			InternalError: "Stripe webhook secret is not configured",
		}
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.Logger.Error("WEBHOOK", fmt.Sprintf("Failed to read webhook payload: %v", err))
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid webhook payload",
			InternalError: fmt.Sprintf("Failed to read webhook payload: %v", err),
			OriginalErr:   err,
		}
	}

	opts := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), s.WebhookSecret, opts)
	if err != nil {
		s.Logger.Error("WEBHOOK", fmt.Sprintf("Webhook signature verification failed: %v", err))
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid webhook signature",
			InternalError: fmt.Sprintf("Webhook signature verification failed: %v", err),
			OriginalErr:   err,
		}
	}

	ctx := r.Context()

	// Dedup is an optimization on top of the idempotent handlers. A Redis
	// outage must not block reconciliation.
	claimed := false
	if s.Dedup != nil {
		acquired, lockErr := s.Dedup.AcquireEventLock(ctx, event.ID)
		if lockErr != nil {
			s.Logger.Warn("WEBHOOK", fmt.Sprintf("Dedup check failed for event %s, processing anyway: %v", event.ID, lockErr))
		} else if !acquired {
			s.Logger.Info("WEBHOOK", fmt.Sprintf("Duplicate delivery of event %s, skipping", event.ID))
			return nil
		} else {
			claimed = true
		}
	}

	s.Logger.Info("WEBHOOK", fmt.Sprintf("Processing Stripe webhook event: %s (%s)", event.Type, event.ID))

	var handlerErr error
	switch event.Type {
	case "checkout.session.completed":
		handlerErr = s.handleSessionCompleted(ctx, event.Data.Raw)
	case "checkout.session.expired":
		handlerErr = s.handleSessionExpired(ctx, event.Data.Raw)
	case "charge.refunded":
		handlerErr = s.handleChargeRefunded(ctx, event.Data.Raw)
	default:
		s.Logger.Info("WEBHOOK", fmt.Sprintf("Unhandled event type: %s", event.Type))
	}

	// A failed delivery must stay retryable: drop the claim so Stripe's
	// retry is not mistaken for a duplicate.
	if handlerErr != nil && claimed {
		if relErr := s.Dedup.ReleaseEventLock(ctx, event.ID); relErr != nil {
			s.Logger.Warn("WEBHOOK", fmt.Sprintf("Failed to release dedup claim for event %s: %v", event.ID, relErr))
		}
	}

	return handlerErr
}

func (s *OrderService) handleSessionCompleted(ctx context.Context, raw json.RawMessage) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return s.unmarshalError("checkout session", err)
	}

	o, err := s.DB.GetOrderBySessionID(ctx, session.ID)
	if err != nil {
		return s.processingError(fmt.Sprintf("Failed to look up order for session %s: %v", session.ID, err), err)
	}
	if o == nil {
		// Sessions created outside this service are not ours to settle.
		s.Logger.Warn("WEBHOOK", fmt.Sprintf("No order found for completed session %s", session.ID))
		return nil
	}

	paymentIntentID := ""
	if session.PaymentIntent != nil {
		paymentIntentID = session.PaymentIntent.ID
	}
	invoiceURL := ""
	if session.Invoice != nil {
		if session.Invoice.HostedInvoiceURL != "" {
			invoiceURL = session.Invoice.HostedInvoiceURL
		} else {
			invoiceURL = session.Invoice.ID
		}
	}

	if err := s.MarkPaid(ctx, o, paymentIntentID, invoiceURL); err != nil {
		return s.processingError(fmt.Sprintf("Failed to settle order %s: %v", o.ID, err), err)
	}
	return nil
}

func (s *OrderService) handleSessionExpired(ctx context.Context, raw json.RawMessage) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return s.unmarshalError("checkout session", err)
	}

	o, err := s.DB.GetOrderBySessionID(ctx, session.ID)
	if err != nil {
		return s.processingError(fmt.Sprintf("Failed to look up order for session %s: %v", session.ID, err), err)
	}
	if o == nil {
		s.Logger.Warn("WEBHOOK", fmt.Sprintf("No order found for expired session %s", session.ID))
		return nil
	}

	if err := s.MarkFailed(ctx, o); err != nil {
		return s.processingError(fmt.Sprintf("Failed to expire order %s: %v", o.ID, err), err)
	}
	return nil
}

func (s *OrderService) handleChargeRefunded(ctx context.Context, raw json.RawMessage) error {
	var charge stripe.Charge
	if err := json.Unmarshal(raw, &charge); err != nil {
		return s.unmarshalError("charge", err)
	}
	if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
		s.Logger.Warn("WEBHOOK", "Refunded charge has no payment intent, skipping")
		return nil
	}

	o, err := s.DB.GetOrderByPaymentIntentID(ctx, charge.PaymentIntent.ID)
	if err != nil {
		return s.processingError(fmt.Sprintf("Failed to look up order for payment intent %s: %v", charge.PaymentIntent.ID, err), err)
	}
	if o == nil {
		s.Logger.Warn("WEBHOOK", fmt.Sprintf("No order found for refunded payment intent %s", charge.PaymentIntent.ID))
		return nil
	}

	full := charge.Refunded || charge.AmountRefunded >= charge.Amount
	if err := s.MarkRefunded(ctx, o, full); err != nil {
		return s.processingError(fmt.Sprintf("Failed to record refund for order %s: %v", o.ID, err), err)
	}
	return nil
}

func (s *OrderService) unmarshalError(what string, err error) error {
	s.Logger.Error("WEBHOOK", fmt.Sprintf("Failed to unmarshal %s: %v", what, err))
	return &WebhookError{
		Category:      "processing",
		StatusCode:    http.StatusBadRequest,
		PublicError:   "Invalid event data",
		InternalError: fmt.Sprintf("Failed to unmarshal %s: %v", what, err),
		OriginalErr:   err,
	}
}

func (s *OrderService) processingError(internal string, err error) error {
	s.Logger.Error("WEBHOOK", internal)
	return &WebhookError{
		Category:      "processing",
		StatusCode:    http.StatusInternalServerError,
		PublicError:   "Failed to process event",
		InternalError: internal,
		OriginalErr:   err,
	}
}
