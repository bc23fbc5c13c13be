package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bistro/internal/model"
	"bistro/internal/service"
)

// Dishes is the catalog surface: public reads plus admin CRUD.
type Dishes interface {
	List(ctx context.Context) ([]model.Dish, error)
	Get(ctx context.Context, id string) (*model.Dish, error)
	Create(ctx context.Context, d *model.Dish) error
	Update(ctx context.Context, d *model.Dish) error
	Delete(ctx context.Context, id string) error
}

func ListDishesHandler(dishes Dishes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := dishes.List(r.Context())
		if err != nil {
			slog.Error("dish list failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if list == nil {
			list = []model.Dish{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetDishHandler(dishes Dishes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		d, err := dishes.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, service.ErrDishNotFound) {
				writeError(w, http.StatusNotFound, "dish not found")
				return
			}
			slog.Error("dish lookup failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, d)
	}
}

type dishRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

func (r dishRequest) validate() string {
	if r.Name == "" || r.Description == "" {
		return "name and description are required"
	}
	if r.Price <= 0 {
		return "price must be positive"
	}
	return ""
}

func CreateDishHandler(dishes Dishes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		d := &model.Dish{Name: req.Name, Description: req.Description, Price: req.Price, Image: req.Image}
		if err := dishes.Create(r.Context(), d); err != nil {
			slog.Error("dish create failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, d)
	}
}

func UpdateDishHandler(dishes Dishes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req dishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		d := &model.Dish{ID: id, Name: req.Name, Description: req.Description, Price: req.Price, Image: req.Image}
		if err := dishes.Update(r.Context(), d); err != nil {
			if errors.Is(err, service.ErrDishNotFound) {
				writeError(w, http.StatusNotFound, "dish not found")
				return
			}
			slog.Error("dish update failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, d)
	}
}

func DeleteDishHandler(dishes Dishes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := dishes.Delete(r.Context(), id); err != nil {
			if errors.Is(err, service.ErrDishNotFound) {
				writeError(w, http.StatusNotFound, "dish not found")
				return
			}
			slog.Error("dish delete failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
