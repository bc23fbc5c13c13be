package tracker

import (
	"context"
	"errors"
	"regexp"
	"time"

	"bistro/internal/model"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrMissingContact = errors.New("all contact fields are required")
	ErrBadEmail       = errors.New("invalid email address")
	ErrPromoRejected  = errors.New("invalid or expired promo code")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// OrderAPI is the slice of the API client checkout needs.
type OrderAPI interface {
	PlaceOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error)
	CheckPromo(ctx context.Context, code string) (*PromoResult, error)
}

type ContactInfo struct {
	CustomerName string
	Email        string
	Phone        string
	Address      string
}

type AppliedPromo struct {
	Code     string
	Discount int
}

// Checkout composes the cart and an optional promo into a single
// order-creation request. Validation is client-side only; the server
// trusts the submitted amounts.
type Checkout struct {
	cart  *Cart
	cache *Cache
	api   OrderAPI
	promo *AppliedPromo
}

func NewCheckout(cart *Cart, cache *Cache, api OrderAPI) *Checkout {
	return &Checkout{cart: cart, cache: cache, api: api}
}

// ApplyPromo validates a code against the server and records it for
// the next submission.
func (c *Checkout) ApplyPromo(ctx context.Context, code string) (int, error) {
	res, err := c.api.CheckPromo(ctx, code)
	if err != nil {
		return 0, err
	}
	if !res.Valid {
		return 0, ErrPromoRejected
	}

	c.promo = &AppliedPromo{Code: code, Discount: res.Discount}
	return res.Discount, nil
}

func (c *Checkout) ResetPromo() {
	c.promo = nil
}

func (c *Checkout) Promo() *AppliedPromo {
	return c.promo
}

// Discount returns the discount amount for the current cart total.
func (c *Checkout) Discount() float64 {
	if c.promo == nil {
		return 0
	}
	return model.DiscountFor(c.cart.Total(), c.promo.Discount)
}

// Submit places the order. On success the cart is cleared and the new
// order seeded into the active-order cache; on any failure cart and
// promo state stay untouched.
func (c *Checkout) Submit(ctx context.Context, info ContactInfo) (string, error) {
	if c.cart.Len() == 0 {
		return "", ErrEmptyCart
	}
	if info.CustomerName == "" || info.Email == "" || info.Phone == "" || info.Address == "" {
		return "", ErrMissingContact
	}
	if !emailPattern.MatchString(info.Email) {
		return "", ErrBadEmail
	}

	items := c.cart.Items()
	orderItems := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		orderItems = append(orderItems, model.OrderItem{
			DishID:   it.DishID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}

	req := CreateOrderRequest{
		CustomerName:   info.CustomerName,
		Email:          info.Email,
		Phone:          info.Phone,
		Address:        info.Address,
		Items:          orderItems,
		TotalAmount:    c.cart.Total(),
		DiscountAmount: c.Discount(),
	}
	if c.promo != nil {
		req.PromoCode = c.promo.Code
	}

	resp, err := c.api.PlaceOrder(ctx, req)
	if err != nil {
		return "", err
	}

	c.cache.Add(resp.OrderNumber, model.StatusAccepted, time.Time{})
	c.cart.Clear()
	c.promo = nil

	return resp.OrderNumber, nil
}
