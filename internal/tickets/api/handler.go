package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/models"
	"github.com/danbahadur2060/event/internal/tickets"
	"github.com/danbahadur2060/event/internal/utils"
)

type Handler struct {
	Service *tickets.Service
	Logger  *logger.Logger
}

func NewHandler(svc *tickets.Service, log *logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// ListForEvent is public: buyers browse ticket tiers on the event page.
func (h *Handler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	types, err := h.Service.ListForEvent(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("TICKETS", fmt.Sprintf("list ticket types for event %s: %v", eventID, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list ticket types")
		return
	}
	utils.WriteJSON(w, http.StatusOK, types)
}

func (h *Handler) CreateTicketType(w http.ResponseWriter, r *http.Request) {
	var t models.TicketType
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	t.EventID = chi.URLParam(r, "eventId")

	created, err := h.Service.Create(r.Context(), t)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateTicketType(w http.ResponseWriter, r *http.Request) {
	var t models.TicketType
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	t.ID = chi.URLParam(r, "ticketTypeId")

	if err := h.Service.Update(r.Context(), t); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.MessageBody{Message: "Ticket type updated"})
}

func (h *Handler) DeleteTicketType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ticketTypeId")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Logger.Error("TICKETS", fmt.Sprintf("delete ticket type %s: %v", id, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete ticket type")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.MessageBody{Message: "Ticket type deleted"})
}
