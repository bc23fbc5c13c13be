package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"bistro/internal/model"
)

var ErrDishNotFound = errors.New("dish not found")

type DishService struct {
	db *sql.DB
}

func NewDishService(db *sql.DB) *DishService {
	return &DishService{db: db}
}

func (s *DishService) List(ctx context.Context) ([]model.Dish, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, price, image FROM dishes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query dishes: %w", err)
	}
	defer rows.Close()

	var dishes []model.Dish
	for rows.Next() {
		var d model.Dish
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Price, &d.Image); err != nil {
			return nil, fmt.Errorf("scan dish: %w", err)
		}
		dishes = append(dishes, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return dishes, nil
}

func (s *DishService) Get(ctx context.Context, id string) (*model.Dish, error) {
	var d model.Dish
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, price, image FROM dishes WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.Description, &d.Price, &d.Image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDishNotFound
		}
		return nil, fmt.Errorf("get dish: %w", err)
	}
	return &d, nil
}

func (s *DishService) Create(ctx context.Context, d *model.Dish) error {
	d.ID = uuid.NewString()
	if d.Image == "" {
		d.Image = "/images/default-dish.jpg"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dishes (id, name, description, price, image) VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.Name, d.Description, d.Price, d.Image,
	)
	if err != nil {
		return fmt.Errorf("insert dish: %w", err)
	}
	return nil
}

func (s *DishService) Update(ctx context.Context, d *model.Dish) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE dishes SET name = $1, description = $2, price = $3, image = $4 WHERE id = $5`,
		d.Name, d.Description, d.Price, d.Image, d.ID,
	)
	if err != nil {
		return fmt.Errorf("update dish: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrDishNotFound
	}

	return nil
}

func (s *DishService) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM dishes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete dish: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrDishNotFound
	}

	return nil
}

// Seed loads the starter menu when the catalog is empty.
func (s *DishService) Seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dishes`).Scan(&count); err != nil {
		return fmt.Errorf("count dishes: %w", err)
	}
	if count > 0 {
		return nil
	}

	seed := []model.Dish{
		{Name: "Margherita Pizza", Description: "Classic Italian pizza with tomatoes and mozzarella", Price: 450, Image: "/images/pizza-margherita.jpg"},
		{Name: "Classic Burger", Description: "Juicy beef patty with cheese, fresh vegetables and sauce", Price: 350, Image: "/images/classic-burger.jpg"},
		{Name: "Pasta Carbonara", Description: "Spaghetti with bacon, parmesan, egg and cream sauce", Price: 400, Image: "/images/pasta-carbonara.jpg"},
		{Name: "Caesar Salad", Description: "Romaine salad with chicken, croutons, parmesan and dressing", Price: 320, Image: "/images/caesar-salad.jpg"},
		{Name: "Philadelphia Sushi Set", Description: "18 rolls with salmon, avocado and cream cheese", Price: 850, Image: "/images/philadelphia-set.jpg"},
		{Name: "Tom Yum Soup", Description: "Spicy Thai soup with shrimp, mushrooms and coconut milk", Price: 380, Image: "/images/tom-yum.jpg"},
	}

	for i := range seed {
		if err := s.Create(ctx, &seed[i]); err != nil {
			return err
		}
	}

	slog.Info("seeded starter menu", "dishes", len(seed))
	return nil
}
