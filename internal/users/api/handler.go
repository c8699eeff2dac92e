package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/models"
	"github.com/danbahadur2060/event/internal/users/db"
	"github.com/danbahadur2060/event/internal/utils"
)

type Handler struct {
	DB     *db.DB
	Logger *logger.Logger
}

func NewHandler(d *db.DB, log *logger.Logger) *Handler {
	return &Handler{DB: d, Logger: log}
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.DB.ListUsers(r.Context())
	if err != nil {
		h.Logger.Error("USERS", fmt.Sprintf("list users: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	utils.WriteJSON(w, http.StatusOK, users)
}

func validRole(role string) bool {
	switch role {
	case models.RoleAttendee, models.RoleOrganizer, models.RoleSpeaker,
		models.RoleExhibitor, models.RoleAdmin, models.RoleSuperadmin:
		return true
	}
	return false
}

func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userId")

	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !validRole(body.Role) {
		utils.WriteError(w, http.StatusBadRequest, "A valid role is required")
		return
	}

	if err := h.DB.UpdateUserRole(r.Context(), id, body.Role); err != nil {
		h.Logger.Error("USERS", fmt.Sprintf("update role for %s: %v", id, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update role")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.MessageBody{Message: "Role updated"})
}
