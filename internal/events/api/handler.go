package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danbahadur2060/event/internal/events"
	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/utils"
)

type Handler struct {
	Service *events.Service
	Logger  *logger.Logger
}

func NewHandler(svc *events.Service, log *logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	evs, err := h.Service.List(r.Context())
	if err != nil {
		h.Logger.Error("EVENTS", fmt.Sprintf("list events: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	utils.WriteJSON(w, http.StatusOK, evs)
}

func (h *Handler) GetEventBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	e, err := h.Service.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.Logger.Error("EVENTS", fmt.Sprintf("get event %s: %v", slug, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load event")
		return
	}
	utils.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in events.EventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	e, err := h.Service.Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventId")

	var in events.EventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	e, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventId")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Logger.Error("EVENTS", fmt.Sprintf("delete event %s: %v", id, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.MessageBody{Message: "Event deleted"})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, events.ErrMissingInfo):
		utils.WriteError(w, http.StatusBadRequest, "Title, date and time are required")
	case errors.Is(err, events.ErrInvalidDate):
		utils.WriteError(w, http.StatusBadRequest, "Invalid date, use YYYY-MM-DD")
	case errors.Is(err, events.ErrInvalidTime):
		utils.WriteError(w, http.StatusBadRequest, "Invalid time, use HH:mm or h:mm AM/PM")
	case errors.Is(err, events.ErrSlugExists):
		utils.WriteError(w, http.StatusConflict, "An event with this title already exists")
	case errors.Is(err, events.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "Event not found")
	default:
		h.Logger.Error("EVENTS", fmt.Sprintf("event write failed: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to save event")
	}
}
