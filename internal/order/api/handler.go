package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/models"
	"github.com/danbahadur2060/event/internal/order"
	"github.com/danbahadur2060/event/internal/tickets"
	"github.com/danbahadur2060/event/internal/utils"
)

type Handler struct {
	OrderService *order.OrderService
	Logger       *logger.Logger
}

func NewHandler(svc *order.OrderService, log *logger.Logger) *Handler {
	return &Handler{OrderService: svc, Logger: log}
}

// Checkout prices the cart and returns the hosted payment URL.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.OrderService.Checkout(r.Context(), req)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrInvalidPayload):
		utils.WriteError(w, http.StatusBadRequest, "Event, email and at least one ticket are required")
	case errors.Is(err, tickets.ErrInvalidTickets):
		utils.WriteError(w, http.StatusBadRequest, "One or more tickets do not belong to this event")
	case errors.Is(err, tickets.ErrInvalidQuantity):
		utils.WriteError(w, http.StatusBadRequest, "Ticket quantity must be at least 1")
	case errors.Is(err, tickets.ErrSalesNotStarted):
		utils.WriteError(w, http.StatusBadRequest, "Ticket sales have not started yet")
	case errors.Is(err, tickets.ErrSalesEnded):
		utils.WriteError(w, http.StatusBadRequest, "Ticket sales have ended")
	case errors.Is(err, tickets.ErrPerUserLimit):
		utils.WriteError(w, http.StatusBadRequest, "Requested quantity exceeds the per user limit")
	case errors.Is(err, tickets.ErrSoldOut):
		utils.WriteError(w, http.StatusConflict, "Not enough tickets remaining")
	case errors.Is(err, order.ErrProviderUnavailable):
		utils.WriteError(w, http.StatusInternalServerError, "Payment provider is not configured")
	default:
		h.Logger.Error("CHECKOUT", fmt.Sprintf("checkout failed: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to start checkout")
	}
}

// StripeWebhook receives Stripe deliveries. Stripe only cares about the
// status code; the body is informational.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	if err := h.OrderService.HandleStripeWebhook(r); err != nil {
		var whErr *order.WebhookError
		if errors.As(err, &whErr) {
			utils.WriteError(w, whErr.StatusCode, whErr.PublicError)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Webhook processing error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.OrderService.ListOrders(r.Context())
	if err != nil {
		h.Logger.Error("ORDER", fmt.Sprintf("list orders: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	o, err := h.OrderService.GetOrder(r.Context(), orderID)
	if err != nil {
		h.Logger.Error("ORDER", fmt.Sprintf("get order %s: %v", orderID, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load order")
		return
	}
	if o == nil {
		utils.WriteError(w, http.StatusNotFound, "Order not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

// OverrideStatus lets an operator correct an order stuck out of band.
func (h *Handler) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		utils.WriteError(w, http.StatusBadRequest, "Status is required")
		return
	}

	if err := h.OrderService.OverrideStatus(r.Context(), orderID, body.Status); err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidTransition):
			utils.WriteError(w, http.StatusConflict, err.Error())
		case errors.Is(err, order.ErrNotFound):
			utils.WriteError(w, http.StatusNotFound, "Order not found")
		default:
			h.Logger.Error("ORDER", fmt.Sprintf("override status for %s: %v", orderID, err))
			utils.WriteError(w, http.StatusInternalServerError, "Failed to update order")
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.MessageBody{Message: "Order status updated"})
}
