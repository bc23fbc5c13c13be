package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"bistro/internal/metrics"
	"bistro/internal/model"
	"bistro/internal/mw"
	"bistro/internal/service"
)

// AdminOrders is the privileged slice of the order store.
type AdminOrders interface {
	List(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Order, error)
	Delete(ctx context.Context, id string) error
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminLoginHandler checks static admin credentials and issues a JWT
// carrying the is_admin claim.
func AdminLoginHandler(username string, passwordHash []byte, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		if req.Username != username ||
			bcrypt.CompareHashAndPassword(passwordHash, []byte(req.Password)) != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"is_admin": true,
			"exp":      jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		})

		tokenString, err := token.SignedString([]byte(jwtSecret))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "token generation failed")
			return
		}

		w.Header().Set("Authorization", "Bearer "+tokenString)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": tokenString})
	}
}

// AdminCheckHandler reports whether the caller holds a valid admin
// token. Always 200, never an auth failure.
func AdminCheckHandler(jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"isAdmin": mw.IsAdmin(r, jwtSecret)})
	}
}

func ListOrdersHandler(orders AdminOrders) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := orders.List(r.Context())
		if err != nil {
			slog.Error("order list failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if list == nil {
			list = []model.Order{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type updateStatusRequest struct {
	Status model.Status `json:"status"`
}

// UpdateOrderStatusHandler applies an administrator-driven status
// change. Re-sending the current status is a no-op and still succeeds.
func UpdateOrderStatusHandler(orders AdminOrders) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		o, err := orders.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrOrderNotFound):
				writeError(w, http.StatusNotFound, "order not found")
			case errors.Is(err, service.ErrInvalidTransition):
				writeError(w, http.StatusBadRequest, "invalid status transition")
			default:
				slog.Error("status update failed", "id", id, "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		metrics.StatusUpdates.WithLabelValues(string(o.Status)).Inc()
		writeJSON(w, http.StatusOK, o)
	}
}

func DeleteOrderHandler(orders AdminOrders) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := orders.Delete(r.Context(), id); err != nil {
			if errors.Is(err, service.ErrOrderNotFound) {
				writeError(w, http.StatusNotFound, "order not found")
				return
			}
			slog.Error("order delete failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
