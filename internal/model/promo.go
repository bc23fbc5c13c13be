package model

import "time"

type PromoCode struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Discount  int        `json:"discount"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ValidAt reports whether the code is redeemable at the given moment.
// An absent expiry means the code never expires.
func (p PromoCode) ValidAt(now time.Time) bool {
	return p.Active && (p.ExpiresAt == nil || p.ExpiresAt.After(now))
}

// DiscountFor computes the discount amount for a percent off a total.
func DiscountFor(total float64, percent int) float64 {
	return total * float64(percent) / 100
}
