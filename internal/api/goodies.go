package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/healplay/internal/models"
	"github.com/tahcohcat/healplay/internal/services"
)

type GoodieHandler struct {
	goodies *services.GoodieService
}

func NewGoodieHandler(goodies *services.GoodieService) *GoodieHandler {
	return &GoodieHandler{goodies: goodies}
}

// GET /api/admin/goodie-orders
func (h *GoodieHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.goodies.ListOrders(r.Context())
	if err != nil {
		fail(w, err, "Failed to load orders")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// GET /api/admin/goodies
func (h *GoodieHandler) ListGoodies(w http.ResponseWriter, r *http.Request) {
	goodies, err := h.goodies.ListGoodies(r.Context())
	if err != nil {
		fail(w, err, "Failed to load goodies")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"goodies": goodies})
}

// POST /api/admin/goodies
func (h *GoodieHandler) CreateGoodie(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGoodieRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	g, err := h.goodies.CreateGoodie(r.Context(), req)
	if err != nil {
		fail(w, err, "Failed to create goodie")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"goodie": g})
}

// DELETE /api/admin/goodies/{id}
func (h *GoodieHandler) DeleteGoodie(w http.ResponseWriter, r *http.Request) {
	if err := h.goodies.DeleteGoodie(r.Context(), mux.Vars(r)["id"]); err != nil {
		fail(w, err, "Failed to delete goodie")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// PATCH /api/admin/goodie-orders/{id}
func (h *GoodieHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateOrderStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	order, err := h.goodies.SetOrderStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		fail(w, err, "Failed to update order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

// GET /api/parent/goodies lists what a parent can redeem.
func (h *GoodieHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	all, err := h.goodies.ListGoodies(r.Context())
	if err != nil {
		fail(w, err, "Failed to load goodies")
		return
	}
	active := []models.Goodie{}
	for _, g := range all {
		if g.IsActive {
			active = append(active, g)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"goodies": active})
}

// POST /api/parent/goodies/{id}/redeem
func (h *GoodieHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req models.RedeemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	order, err := h.goodies.Redeem(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		fail(w, err, "Failed to place order")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"order": order})
}

func (h *GoodieHandler) RegisterAdminRoutes(r *mux.Router) {
	r.HandleFunc("/goodie-orders", h.ListOrders).Methods("GET")
	r.HandleFunc("/goodie-orders/{id}", h.UpdateOrderStatus).Methods("PATCH")
	r.HandleFunc("/goodies", h.ListGoodies).Methods("GET")
	r.HandleFunc("/goodies", h.CreateGoodie).Methods("POST")
	r.HandleFunc("/goodies/{id}", h.DeleteGoodie).Methods("DELETE")
}

func (h *GoodieHandler) RegisterParentRoutes(r *mux.Router) {
	r.HandleFunc("/goodies", h.ListActive).Methods("GET")
	r.HandleFunc("/goodies/{id}/redeem", h.Redeem).Methods("POST")
}
