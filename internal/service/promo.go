package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bistro/internal/model"
)

var (
	// ErrPromoInvalid deliberately covers not-found, inactive and
	// expired alike; callers get a single generic rejection.
	ErrPromoInvalid  = errors.New("invalid or expired promo code")
	ErrPromoExists   = errors.New("promo code already exists")
	ErrPromoNotFound = errors.New("promo code not found")
	ErrBadDiscount   = errors.New("discount must be between 1 and 100")
)

type PromoService struct {
	db *sql.DB
}

func NewPromoService(db *sql.DB) *PromoService {
	return &PromoService{db: db}
}

// normalizeCode maps user input to the stored form. Codes are
// case-insensitive: both lookup and storage use the uppercase form, so
// "welcome10" and "WELCOME10" name the same code.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Check returns the discount percent for a redeemable code.
func (s *PromoService) Check(ctx context.Context, code string) (int, error) {
	code = normalizeCode(code)
	if code == "" {
		return 0, ErrPromoInvalid
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, discount, active, expires_at, created_at
		FROM promo_codes
		WHERE code = $1
	`, code)

	p, err := scanPromo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrPromoInvalid
		}
		return 0, fmt.Errorf("get promo code: %w", err)
	}

	if !p.ValidAt(time.Now()) {
		return 0, ErrPromoInvalid
	}

	return p.Discount, nil
}

func (s *PromoService) Create(ctx context.Context, code string, discount int, expiresAt *time.Time) (*model.PromoCode, error) {
	if discount < 1 || discount > 100 {
		return nil, ErrBadDiscount
	}

	p := &model.PromoCode{
		ID:        uuid.NewString(),
		Code:      normalizeCode(code),
		Discount:  discount,
		Active:    true,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if p.Code == "" {
		return nil, errors.New("promo code is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO promo_codes (id, code, discount, active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Code, p.Discount, p.Active, p.ExpiresAt, p.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, ErrPromoExists
		}
		return nil, fmt.Errorf("insert promo code: %w", err)
	}

	return p, nil
}

func (s *PromoService) List(ctx context.Context) ([]model.PromoCode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, discount, active, expires_at, created_at
		FROM promo_codes
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query promo codes: %w", err)
	}
	defer rows.Close()

	var promos []model.PromoCode
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promo code: %w", err)
		}
		promos = append(promos, *p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return promos, nil
}

// SetActive toggles a code on or off without touching its other fields.
func (s *PromoService) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE promo_codes SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("update promo code: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPromoNotFound
	}

	return nil
}

func (s *PromoService) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM promo_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete promo code: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPromoNotFound
	}

	return nil
}

func scanPromo(row rowScanner) (*model.PromoCode, error) {
	var (
		p         model.PromoCode
		expiresAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Code, &p.Discount, &p.Active, &expiresAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		p.ExpiresAt = &t
	}
	return &p, nil
}
