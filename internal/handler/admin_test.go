package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bistro/internal/model"
	"bistro/internal/service"
)

type mockAdminOrders struct {
	listFn         func(ctx context.Context) ([]model.Order, error)
	updateStatusFn func(ctx context.Context, id string, status model.Status) (*model.Order, error)
	deleteFn       func(ctx context.Context, id string) error
}

func (m *mockAdminOrders) List(ctx context.Context) ([]model.Order, error) {
	return m.listFn(ctx)
}

func (m *mockAdminOrders) UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Order, error) {
	return m.updateStatusFn(ctx, id, status)
}

func (m *mockAdminOrders) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func TestAdminLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("12345"), bcrypt.MinCost)
	require.NoError(t, err)

	h := AdminLoginHandler("admin", hash, "secret")

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "12345"})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Authorization"))

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
}

func TestAdminLoginBadCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("12345"), bcrypt.MinCost)
	require.NoError(t, err)

	h := AdminLoginHandler("admin", hash, "secret")

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	m := &mockAdminOrders{
		updateStatusFn: func(ctx context.Context, id string, status model.Status) (*model.Order, error) {
			require.Equal(t, "o-1", id)
			require.Equal(t, model.StatusDelivered, status)
			return &model.Order{ID: id, OrderNumber: "123456", Status: status, CreatedAt: time.Now()}, nil
		},
	}

	r := chi.NewRouter()
	r.Put("/api/admin/orders/{id}", UpdateOrderStatusHandler(m))

	body, _ := json.Marshal(map[string]string{"status": "delivered"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/admin/orders/o-1", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "delivered", resp["status"])
}

func TestUpdateOrderStatusInvalidTransition(t *testing.T) {
	m := &mockAdminOrders{
		updateStatusFn: func(ctx context.Context, id string, status model.Status) (*model.Order, error) {
			return nil, service.ErrInvalidTransition
		},
	}

	r := chi.NewRouter()
	r.Put("/api/admin/orders/{id}", UpdateOrderStatusHandler(m))

	body, _ := json.Marshal(map[string]string{"status": "accepted"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/admin/orders/o-1", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	m := &mockAdminOrders{
		updateStatusFn: func(ctx context.Context, id string, status model.Status) (*model.Order, error) {
			return nil, service.ErrOrderNotFound
		},
	}

	r := chi.NewRouter()
	r.Put("/api/admin/orders/{id}", UpdateOrderStatusHandler(m))

	body, _ := json.Marshal(map[string]string{"status": "preparing"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/admin/orders/missing", bytes.NewReader(body)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersEmpty(t *testing.T) {
	m := &mockAdminOrders{
		listFn: func(ctx context.Context) ([]model.Order, error) {
			return nil, nil
		},
	}

	rec := httptest.NewRecorder()
	ListOrdersHandler(m)(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestDeleteOrderNotFound(t *testing.T) {
	m := &mockAdminOrders{
		deleteFn: func(ctx context.Context, id string) error {
			return service.ErrOrderNotFound
		},
	}

	r := chi.NewRouter()
	r.Delete("/api/admin/orders/{id}", DeleteOrderHandler(m))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/admin/orders/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
