package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/reminder"
	"github.com/danbahadur2060/event/internal/utils"
)

type Handler struct {
	Service *reminder.Service
	Secret  string
	Logger  *logger.Logger
}

func NewHandler(svc *reminder.Service, secret string, log *logger.Logger) *Handler {
	return &Handler{Service: svc, Secret: secret, Logger: log}
}

// TriggerReminders is called by the external scheduler. It authenticates
// with a shared secret header rather than a user token.
func (h *Handler) TriggerReminders(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-Cron-Key")
	if h.Secret == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.Secret)) != 1 {
		h.Logger.LogSecurity("CRON", "reminder trigger rejected: bad or missing cron key")
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sent, err := h.Service.Run(r.Context(), time.Now())
	if err != nil {
		h.Logger.Error("CRON", fmt.Sprintf("reminder run failed: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Reminder run failed")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "sent": sent})
}
