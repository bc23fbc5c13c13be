package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bistro/internal/model"
)

func TestClientGetOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/123456", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"orderNumber": "123456",
			"status":      "preparing",
			"createdAt":   time.Now().Format(time.RFC3339),
			"canCancel":   true,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	snap, err := c.GetOrder(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, "123456", snap.OrderNumber)
	assert.Equal(t, model.StatusPreparing, snap.Status)
	assert.True(t, snap.CanCancel)
}

func TestClientGetOrderGone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "order not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetOrder(context.Background(), "000000")
	assert.ErrorIs(t, err, ErrOrderGone)
}

func TestClientGetOrderNotFoundDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	for i := 0; i < 10; i++ {
		_, err := c.GetOrder(context.Background(), "000000")
		assert.ErrorIs(t, err, ErrOrderGone)
	}
}

func TestClientPlaceOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/orders", r.URL.Path)

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 750.0, req.TotalAmount-req.DiscountAmount)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CreateOrderResponse{Success: true, OrderNumber: "654321", Message: "order created"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.PlaceOrder(context.Background(), CreateOrderRequest{
		CustomerName:   "Ivan Petrov",
		Email:          "ivan@example.com",
		Phone:          "+7 900 000-00-00",
		Address:        "Lenina 1",
		Items:          []model.OrderItem{{DishID: "d1", Name: "Margherita Pizza", Price: 1000, Quantity: 1}},
		TotalAmount:    1000,
		PromoCode:      "SUMMER25",
		DiscountAmount: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, "654321", resp.OrderNumber)
}

func TestClientPlaceOrderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "all contact fields are required"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.PlaceOrder(context.Background(), CreateOrderRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all contact fields are required")
}

func TestClientCheckPromo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		if req["code"] == "SUMMER25" {
			json.NewEncoder(w).Encode(PromoResult{Valid: true, Discount: 25, Message: "promo code applied"})
			return
		}
		json.NewEncoder(w).Encode(PromoResult{Valid: false, Error: "invalid or expired promo code"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	res, err := c.CheckPromo(context.Background(), "SUMMER25")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 25, res.Discount)

	res, err = c.CheckPromo(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestClientCancelOrder(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/123456/cancel", r.URL.Path)
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": "order can no longer be cancelled"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	require.NoError(t, c.CancelOrder(context.Background(), "123456"))

	status = http.StatusBadRequest
	assert.ErrorIs(t, c.CancelOrder(context.Background(), "123456"), ErrCancelRejected)

	status = http.StatusNotFound
	assert.ErrorIs(t, c.CancelOrder(context.Background(), "123456"), ErrOrderGone)
}
