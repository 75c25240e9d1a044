package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/henriquexaud/OrdersAPI/internal/domain"
	"github.com/henriquexaud/OrdersAPI/internal/service"
	"github.com/henriquexaud/OrdersAPI/internal/storage"
)

type handler struct {
	svc *service.Service
	log *zap.Logger
}

// NewRouter wires the intake routes. Queue-internal failures never surface
// here; callers only see validation and not-found conditions.
func NewRouter(svc *service.Service, log *zap.Logger) http.Handler {
	h := &handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{orderID}", h.getOrder)
	return r
}

type createOrderRequest struct {
	OrderID  string  `json:"orderId"`
	Customer string  `json:"customer"`
	Total    float64 `json:"total"`
}

type errorResponse struct {
	Message string `json:"message"`
}

type orderResponse struct {
	ID        string     `json:"id"`
	OrderID   string     `json:"orderId"`
	Customer  string     `json:"customer"`
	Total     float64    `json:"total"`
	Status    string     `json:"status"`
	Attempts  int        `json:"attempts"`
	LockedAt  *time.Time `json:"lockedAt"`
	LastError *string    `json:"lastError"`
	CreatedAt time.Time  `json:"createdAt"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		ID:        o.ID,
		OrderID:   o.OrderID,
		Customer:  o.Customer,
		Total:     o.Total,
		Status:    string(o.Status),
		Attempts:  o.Attempts,
		LockedAt:  o.LockedAt,
		LastError: o.LastError,
		CreatedAt: o.CreatedAt,
	}
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createOrder is idempotent on orderId: 201 with the new row, or 200 with
// the existing row untouched when the id was already taken.
func (h *handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return
	}
	if msg, ok := validateCreateOrder(req); !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: msg})
		return
	}

	o, created, err := h.svc.CreateOrder(r.Context(), service.CreateOrderInput{
		OrderID:  req.OrderID,
		Customer: req.Customer,
		Total:    req.Total,
	})
	if err != nil {
		h.log.Error("create order failed", zap.String("orderId", req.OrderID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal Server Error"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toOrderResponse(o))
}

func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid params"})
		return
	}

	o, err := h.svc.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Message: "Order not found"})
			return
		}
		h.log.Error("get order failed", zap.String("orderId", orderID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal Server Error"})
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func validateCreateOrder(req createOrderRequest) (string, bool) {
	switch {
	case req.OrderID == "":
		return "orderId is required", false
	case req.Customer == "":
		return "customer is required", false
	case req.Total <= 0:
		return "total must be positive", false
	}
	return "", true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
