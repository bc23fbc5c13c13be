package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"bistro/internal/model"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotCancelable     = errors.New("order can no longer be cancelled")
)

// number generation retries on the rare unique-key collision
const maxNumberAttempts = 5

type OrderService struct {
	db *sql.DB
}

func NewOrderService(db *sql.DB) *OrderService {
	return &OrderService{db: db}
}

// Create persists a new order in the accepted state and assigns it a
// public 6-digit number. Amounts arrive from the client and are stored
// as submitted; only the finalAmount identity is established here.
func (s *OrderService) Create(ctx context.Context, o *model.Order) error {
	o.ID = uuid.NewString()
	o.Status = model.StatusAccepted
	o.CreatedAt = time.Now().UTC()
	o.FinalAmount = o.TotalAmount - o.DiscountAmount

	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	var promo sql.NullString
	if o.PromoCode != "" {
		promo = sql.NullString{String: o.PromoCode, Valid: true}
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number, err := newOrderNumber()
		if err != nil {
			return fmt.Errorf("generate order number: %w", err)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO orders (id, order_number, customer_name, email, phone, address,
			                    items, total_amount, promo_code, discount_amount, final_amount, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, o.ID, number, o.CustomerName, o.Email, o.Phone, o.Address,
			items, o.TotalAmount, promo, o.DiscountAmount, o.FinalAmount, o.Status, o.CreatedAt)
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				continue
			}
			return fmt.Errorf("insert order: %w", err)
		}

		o.OrderNumber = number
		return nil
	}

	return errors.New("could not assign a unique order number")
}

// newOrderNumber draws a random number in [100000, 999999].
func newOrderNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

func (s *OrderService) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, order_number, customer_name, email, phone, address,
		       items, total_amount, promo_code, discount_amount, final_amount, status, created_at
		FROM orders
		WHERE order_number = $1
	`, number)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// List returns all orders, newest first. Admin panel only.
func (s *OrderService) List(ctx context.Context) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_number, customer_name, email, phone, address,
		       items, total_amount, promo_code, discount_amount, final_amount, status, created_at
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return orders, nil
}

// UpdateStatus moves an order to a new status. Setting the current
// status again is a no-op; transitions that the status machine forbids
// return ErrInvalidTransition. The updated order is returned.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidTransition
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current model.Status
	err = tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get current status: %w", err)
	}

	if current != status {
		if !model.CanTransition(current, status) {
			return nil, ErrInvalidTransition
		}
		if _, err = tx.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, id); err != nil {
			return nil, fmt.Errorf("update status: %w", err)
		}
	}

	row := tx.QueryRowContext(ctx, `
		SELECT id, order_number, customer_name, email, phone, address,
		       items, total_amount, promo_code, discount_amount, final_amount, status, created_at
		FROM orders
		WHERE id = $1
	`, id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return o, nil
}

// Cancel performs the customer-initiated cancellation of an order
// identified by its public number. It is rejected once the order has
// left the cancelable window.
func (s *OrderService) Cancel(ctx context.Context, number string) (*model.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current model.Status
	err = tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE order_number = $1 FOR UPDATE`, number).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get current status: %w", err)
	}

	if !current.Cancelable() {
		return nil, ErrNotCancelable
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE order_number = $2`,
		model.StatusCancelled, number,
	); err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		SELECT id, order_number, customer_name, email, phone, address,
		       items, total_amount, promo_code, discount_amount, final_amount, status, created_at
		FROM orders
		WHERE order_number = $1
	`, number)
	o, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return o, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o     model.Order
		items []byte
		promo sql.NullString
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.Email, &o.Phone, &o.Address,
		&items, &o.TotalAmount, &promo, &o.DiscountAmount, &o.FinalAmount, &o.Status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if promo.Valid {
		o.PromoCode = promo.String
	}

	return &o, nil
}
