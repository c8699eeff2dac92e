package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danbahadur2060/event/internal/coupon"
	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/models"
	"github.com/danbahadur2060/event/internal/utils"
)

type Handler struct {
	Service *coupon.Service
	Logger  *logger.Logger
}

func NewHandler(svc *coupon.Service, log *logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.Service.List(r.Context())
	if err != nil {
		h.Logger.Error("COUPON", fmt.Sprintf("list coupons: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list coupons")
		return
	}
	utils.WriteJSON(w, http.StatusOK, coupons)
}

func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var in coupon.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.Service.Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "couponId")

	var c models.Coupon
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	c.ID = id

	if err := h.Service.Update(r.Context(), c); err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.MessageBody{Message: "Coupon updated"})
}

func (h *Handler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "couponId")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Logger.Error("COUPON", fmt.Sprintf("delete coupon %s: %v", id, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete coupon")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.MessageBody{Message: "Coupon deleted"})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, coupon.ErrInvalidType):
		utils.WriteError(w, http.StatusBadRequest, "Coupon type must be percent or fixed")
	case errors.Is(err, coupon.ErrPercentRange):
		utils.WriteError(w, http.StatusBadRequest, "Percent amount must be between 0 and 100")
	case errors.Is(err, coupon.ErrNegativeFixed):
		utils.WriteError(w, http.StatusBadRequest, "Fixed amount must not be negative")
	case errors.Is(err, coupon.ErrCodeExists):
		utils.WriteError(w, http.StatusConflict, "A coupon with this code already exists")
	case errors.Is(err, coupon.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "Coupon not found")
	default:
		h.Logger.Error("COUPON", fmt.Sprintf("coupon write failed: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to save coupon")
	}
}
