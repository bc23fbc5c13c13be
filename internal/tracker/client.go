package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"bistro/internal/model"
)

var (
	// ErrOrderGone means the server no longer knows the order; the
	// cache drops such entries immediately.
	ErrOrderGone = errors.New("order not found on server")

	// ErrCancelRejected means the cancelable window has closed.
	ErrCancelRejected = errors.New("order can no longer be cancelled")
)

// OrderSnapshot is the slice of the server's order representation the
// tracker cares about.
type OrderSnapshot struct {
	OrderNumber string       `json:"orderNumber"`
	Status      model.Status `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	CanCancel   bool         `json:"canCancel"`
}

type CreateOrderRequest struct {
	CustomerName   string            `json:"customerName"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	Address        string            `json:"address"`
	Items          []model.OrderItem `json:"items"`
	TotalAmount    float64           `json:"totalAmount"`
	PromoCode      string            `json:"promoCode,omitempty"`
	DiscountAmount float64           `json:"discountAmount"`
}

type CreateOrderResponse struct {
	Success     bool   `json:"success"`
	OrderNumber string `json:"orderNumber"`
	Message     string `json:"message"`
}

type PromoResult struct {
	Valid    bool   `json:"valid"`
	Discount int    `json:"discount"`
	Message  string `json:"message"`
	Error    string `json:"error"`
}

// Client talks to the storefront API. Order lookups run through a
// circuit breaker so a dead server stops a busy poll loop from
// hammering it.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
}

func NewClient(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetRetryCount(0),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "order-lookup",
			MaxRequests: 3,
			Interval:    15 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Info("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

type lookupResult struct {
	snapshot *OrderSnapshot
	gone     bool
}

// GetOrder fetches the current server-side view of an order. A 404 is
// a definitive answer, not a failure, so it does not trip the breaker.
func (c *Client) GetOrder(ctx context.Context, number string) (*OrderSnapshot, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.R().SetContext(ctx).Get("/api/orders/" + number)
		if err != nil {
			return nil, fmt.Errorf("do request: %w", err)
		}

		switch resp.StatusCode() {
		case http.StatusOK:
			var snap OrderSnapshot
			if err := json.Unmarshal(resp.Body(), &snap); err != nil {
				return nil, fmt.Errorf("decode order: %w", err)
			}
			return lookupResult{snapshot: &snap}, nil
		case http.StatusNotFound:
			return lookupResult{gone: true}, nil
		default:
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode())
		}
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("order lookup unavailable: %w", err)
		}
		return nil, err
	}

	lr := res.(lookupResult)
	if lr.gone {
		return nil, ErrOrderGone
	}
	return lr.snapshot, nil
}

// PlaceOrder submits a checkout request. Creation is a single atomic
// request; any failure leaves no partial state behind.
func (c *Client) PlaceOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	var out CreateOrderResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/api/orders")
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("order rejected: %s", serverError(resp.Body()))
	}
	if !out.Success {
		return nil, fmt.Errorf("order rejected: %s", out.Message)
	}

	return &out, nil
}

// CheckPromo validates a promo code against the server.
func (c *Client) CheckPromo(ctx context.Context, code string) (*PromoResult, error) {
	var out PromoResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"code": code}).
		SetResult(&out).
		Post("/api/promo-check")
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("promo check failed: %s", serverError(resp.Body()))
	}

	return &out, nil
}

// CancelOrder asks the server to cancel an order.
func (c *Client) CancelOrder(ctx context.Context, number string) error {
	resp, err := c.http.R().SetContext(ctx).Post("/api/orders/" + number + "/cancel")
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return ErrCancelRejected
	case http.StatusNotFound:
		return ErrOrderGone
	default:
		return fmt.Errorf("unexpected status: %d", resp.StatusCode())
	}
}

func serverError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return string(body)
}
