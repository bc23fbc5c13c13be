package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bistro/internal/metrics"
	"bistro/internal/model"
	"bistro/internal/service"
)

// Orders is the slice of the order store the public handlers need.
type Orders interface {
	Create(ctx context.Context, o *model.Order) error
	GetByNumber(ctx context.Context, number string) (*model.Order, error)
	Cancel(ctx context.Context, number string) (*model.Order, error)
}

type createOrderRequest struct {
	CustomerName   string            `json:"customerName"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	Address        string            `json:"address"`
	Items          []model.OrderItem `json:"items"`
	TotalAmount    float64           `json:"totalAmount"`
	PromoCode      string            `json:"promoCode"`
	DiscountAmount float64           `json:"discountAmount"`
}

// CreateOrderHandler accepts a checkout submission. Amounts are stored
// as submitted without server-side recomputation.
func CreateOrderHandler(orders Orders) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		if req.CustomerName == "" || req.Email == "" || req.Phone == "" || req.Address == "" {
			writeError(w, http.StatusBadRequest, "all contact fields are required")
			return
		}
		if len(req.Items) == 0 {
			writeError(w, http.StatusBadRequest, "order must contain at least one item")
			return
		}
		if req.TotalAmount < 0 || req.DiscountAmount < 0 || req.DiscountAmount > req.TotalAmount {
			writeError(w, http.StatusBadRequest, "invalid order amounts")
			return
		}

		o := &model.Order{
			CustomerName:   req.CustomerName,
			Email:          req.Email,
			Phone:          req.Phone,
			Address:        req.Address,
			Items:          req.Items,
			TotalAmount:    req.TotalAmount,
			PromoCode:      req.PromoCode,
			DiscountAmount: req.DiscountAmount,
		}

		if err := orders.Create(r.Context(), o); err != nil {
			slog.Error("order create failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create order")
			return
		}

		metrics.OrdersCreated.Inc()
		writeJSON(w, http.StatusCreated, map[string]any{
			"success":     true,
			"orderNumber": o.OrderNumber,
			"message":     "order created",
		})
	}
}

// GetOrderHandler serves the public tracking lookup by order number.
func GetOrderHandler(orders Orders) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := chi.URLParam(r, "orderNumber")

		o, err := orders.GetByNumber(r.Context(), number)
		if err != nil {
			if errors.Is(err, service.ErrOrderNotFound) {
				writeError(w, http.StatusNotFound, "order not found")
				return
			}
			slog.Error("order lookup failed", "order", number, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, o)
	}
}

// CancelOrderHandler handles the customer-initiated cancellation.
// 400 once the server-asserted cancelable window has closed.
func CancelOrderHandler(orders Orders) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := chi.URLParam(r, "orderNumber")

		o, err := orders.Cancel(r.Context(), number)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrOrderNotFound):
				writeError(w, http.StatusNotFound, "order not found")
			case errors.Is(err, service.ErrNotCancelable):
				writeError(w, http.StatusBadRequest, "order can no longer be cancelled")
			default:
				slog.Error("order cancel failed", "order", number, "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		metrics.OrdersCancelled.Inc()
		writeJSON(w, http.StatusOK, o)
	}
}
