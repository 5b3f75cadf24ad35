package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/healplay/internal/auth"
	"github.com/tahcohcat/healplay/internal/models"
	"github.com/tahcohcat/healplay/internal/services"
)

type BadgeHandler struct {
	badges *services.BadgeService
}

func NewBadgeHandler(badges *services.BadgeService) *BadgeHandler {
	return &BadgeHandler{badges: badges}
}

// GET /api/parent/badges
func (h *BadgeHandler) Earned(w http.ResponseWriter, r *http.Request) {
	earned, err := h.badges.Earned(r.Context(), auth.ParentID(r))
	if err != nil {
		fail(w, err, "Failed to load badges")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"badges": earned})
}

// GET /api/parent/badge/{badge}/status
func (h *BadgeHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.badges.Status(r.Context(), auth.ParentID(r), mux.Vars(r)["badge"])
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Badge not found")
		return
	} else if err != nil {
		fail(w, err, "Failed to check badge")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// POST /api/parent/badge/{badge}/collect
func (h *BadgeHandler) Collect(w http.ResponseWriter, r *http.Request) {
	res, err := h.badges.Collect(r.Context(), auth.ParentID(r), mux.Vars(r)["badge"])
	if errors.Is(err, services.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.CollectResult{Success: false, Error: "Badge not found"})
		return
	} else if err != nil {
		logErr(err, "Failed to collect badge")
		writeJSON(w, http.StatusInternalServerError, models.CollectResult{Success: false, Error: "Failed to collect badge"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *BadgeHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/badges", h.Earned).Methods("GET")
	r.HandleFunc("/badge/{badge}/status", h.Status).Methods("GET")
	r.HandleFunc("/badge/{badge}/collect", h.Collect).Methods("POST")
}
