package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/danbahadur2060/event/internal/booking"
	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/utils"
)

type Handler struct {
	Service *booking.Service
	Logger  *logger.Logger
}

func NewHandler(svc *booking.Service, log *logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CreateBooking takes a public RSVP for an event.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventID string `json:"eventId"`
		Email   string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b, err := h.Service.Create(r.Context(), req.EventID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrMissingFields):
			utils.WriteError(w, http.StatusBadRequest, "eventId and email are required")
		case errors.Is(err, booking.ErrInvalidEmail):
			utils.WriteError(w, http.StatusBadRequest, "Invalid email format")
		case errors.Is(err, booking.ErrEventUnknown):
			utils.WriteError(w, http.StatusNotFound, "Event not found")
		default:
			h.Logger.Error("BOOKING", fmt.Sprintf("create booking: %v", err))
			utils.WriteError(w, http.StatusInternalServerError, "Failed to create booking")
		}
		return
	}

	utils.WriteJSON(w, http.StatusCreated, b)
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.Service.List(r.Context())
	if err != nil {
		h.Logger.Error("BOOKING", fmt.Sprintf("list bookings: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list bookings")
		return
	}
	utils.WriteJSON(w, http.StatusOK, bookings)
}
