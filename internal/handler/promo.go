package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bistro/internal/model"
	"bistro/internal/service"
)

// Promos is the promo validator plus its admin CRUD surface.
type Promos interface {
	Check(ctx context.Context, code string) (int, error)
	Create(ctx context.Context, code string, discount int, expiresAt *time.Time) (*model.PromoCode, error)
	List(ctx context.Context) ([]model.PromoCode, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type promoCheckRequest struct {
	Code string `json:"code"`
}

// CheckPromoHandler validates a code for checkout. Rejections come
// back as {"valid": false, "error": ...} with a 200 so the checkout
// form can render them inline.
func CheckPromoHandler(promos Promos) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req promoCheckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		discount, err := promos.Check(r.Context(), req.Code)
		if err != nil {
			if errors.Is(err, service.ErrPromoInvalid) {
				writeJSON(w, http.StatusOK, map[string]any{
					"valid": false,
					"error": "invalid or expired promo code",
				})
				return
			}
			slog.Error("promo check failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"valid":    true,
			"discount": discount,
			"message":  "promo code applied",
		})
	}
}

type createPromoRequest struct {
	Code      string `json:"code"`
	Discount  int    `json:"discount"`
	ExpiresAt string `json:"expiresAt"`
}

func CreatePromoHandler(promos Promos) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPromoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		var expiresAt *time.Time
		if req.ExpiresAt != "" {
			t, err := time.Parse(time.RFC3339, req.ExpiresAt)
			if err != nil {
				writeError(w, http.StatusBadRequest, "expiresAt must be RFC3339")
				return
			}
			expiresAt = &t
		}

		p, err := promos.Create(r.Context(), req.Code, req.Discount, expiresAt)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrPromoExists):
				writeError(w, http.StatusConflict, "promo code already exists")
			case errors.Is(err, service.ErrBadDiscount):
				writeError(w, http.StatusBadRequest, "discount must be between 1 and 100")
			default:
				slog.Error("promo create failed", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, p)
	}
}

func ListPromosHandler(promos Promos) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := promos.List(r.Context())
		if err != nil {
			slog.Error("promo list failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if list == nil {
			list = []model.PromoCode{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type updatePromoRequest struct {
	Active bool `json:"active"`
}

func UpdatePromoHandler(promos Promos) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req updatePromoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		if err := promos.SetActive(r.Context(), id, req.Active); err != nil {
			if errors.Is(err, service.ErrPromoNotFound) {
				writeError(w, http.StatusNotFound, "promo code not found")
				return
			}
			slog.Error("promo update failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func DeletePromoHandler(promos Promos) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := promos.Delete(r.Context(), id); err != nil {
			if errors.Is(err, service.ErrPromoNotFound) {
				writeError(w, http.StatusNotFound, "promo code not found")
				return
			}
			slog.Error("promo delete failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
