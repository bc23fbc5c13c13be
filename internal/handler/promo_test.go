package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bistro/internal/model"
	"bistro/internal/service"
)

type mockPromos struct {
	checkFn     func(ctx context.Context, code string) (int, error)
	createFn    func(ctx context.Context, code string, discount int, expiresAt *time.Time) (*model.PromoCode, error)
	listFn      func(ctx context.Context) ([]model.PromoCode, error)
	setActiveFn func(ctx context.Context, id string, active bool) error
	deleteFn    func(ctx context.Context, id string) error
}

func (m *mockPromos) Check(ctx context.Context, code string) (int, error) {
	return m.checkFn(ctx, code)
}

func (m *mockPromos) Create(ctx context.Context, code string, discount int, expiresAt *time.Time) (*model.PromoCode, error) {
	return m.createFn(ctx, code, discount, expiresAt)
}

func (m *mockPromos) List(ctx context.Context) ([]model.PromoCode, error) {
	return m.listFn(ctx)
}

func (m *mockPromos) SetActive(ctx context.Context, id string, active bool) error {
	return m.setActiveFn(ctx, id, active)
}

func (m *mockPromos) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func TestCheckPromoValid(t *testing.T) {
	m := &mockPromos{
		checkFn: func(ctx context.Context, code string) (int, error) {
			return 25, nil
		},
	}

	body, _ := json.Marshal(map[string]string{"code": "SUMMER25"})
	rec := httptest.NewRecorder()
	CheckPromoHandler(m)(rec, httptest.NewRequest(http.MethodPost, "/api/promo-check", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Valid    bool   `json:"valid"`
		Discount int    `json:"discount"`
		Message  string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, 25, resp.Discount)
	assert.NotEmpty(t, resp.Message)
}

func TestCheckPromoInvalid(t *testing.T) {
	m := &mockPromos{
		checkFn: func(ctx context.Context, code string) (int, error) {
			return 0, service.ErrPromoInvalid
		},
	}

	body, _ := json.Marshal(map[string]string{"code": "NOPE"})
	rec := httptest.NewRecorder()
	CheckPromoHandler(m)(rec, httptest.NewRequest(http.MethodPost, "/api/promo-check", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Error)
}

func TestCreatePromoConflict(t *testing.T) {
	m := &mockPromos{
		createFn: func(ctx context.Context, code string, discount int, expiresAt *time.Time) (*model.PromoCode, error) {
			return nil, service.ErrPromoExists
		},
	}

	body, _ := json.Marshal(map[string]any{"code": "WELCOME10", "discount": 10})
	rec := httptest.NewRecorder()
	CreatePromoHandler(m)(rec, httptest.NewRequest(http.MethodPost, "/api/admin/promo-codes", bytes.NewReader(body)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreatePromoBadDiscount(t *testing.T) {
	m := &mockPromos{
		createFn: func(ctx context.Context, code string, discount int, expiresAt *time.Time) (*model.PromoCode, error) {
			return nil, service.ErrBadDiscount
		},
	}

	body, _ := json.Marshal(map[string]any{"code": "ZERO", "discount": 0})
	rec := httptest.NewRecorder()
	CreatePromoHandler(m)(rec, httptest.NewRequest(http.MethodPost, "/api/admin/promo-codes", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePromoBadExpiry(t *testing.T) {
	m := &mockPromos{}

	body, _ := json.Marshal(map[string]any{"code": "X", "discount": 5, "expiresAt": "tomorrow"})
	rec := httptest.NewRecorder()
	CreatePromoHandler(m)(rec, httptest.NewRequest(http.MethodPost, "/api/admin/promo-codes", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePromoWithExpiry(t *testing.T) {
	expiry := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	m := &mockPromos{
		createFn: func(ctx context.Context, code string, discount int, expiresAt *time.Time) (*model.PromoCode, error) {
			require.NotNil(t, expiresAt)
			assert.True(t, expiry.Equal(*expiresAt))
			return &model.PromoCode{ID: "p-1", Code: code, Discount: discount, Active: true, ExpiresAt: expiresAt}, nil
		},
	}

	body, _ := json.Marshal(map[string]any{
		"code":      "summer25",
		"discount":  25,
		"expiresAt": expiry.Format(time.RFC3339),
	})
	rec := httptest.NewRecorder()
	CreatePromoHandler(m)(rec, httptest.NewRequest(http.MethodPost, "/api/admin/promo-codes", bytes.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
}
