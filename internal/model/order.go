package model

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of an order. The main progression is
// accepted → preparing → out_for_delivery → delivered; cancelled is a
// side branch reachable from any non-terminal state.
type Status string

const (
	StatusAccepted       Status = "accepted"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

var statusRank = map[Status]int{
	StatusAccepted:       0,
	StatusPreparing:      1,
	StatusOutForDelivery: 2,
	StatusDelivered:      3,
}

func (s Status) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Cancelable reports whether a customer may still cancel an order in
// this state. The window closes once the order is out for delivery.
func (s Status) Cancelable() bool {
	return s == StatusAccepted || s == StatusPreparing
}

// CanTransition reports whether an order may move from one status to
// another. Transitions are forward-only along the main progression
// (stages may be skipped); cancellation is allowed from any
// non-terminal state. A same-status update is not a transition, the
// caller treats it as a no-op.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to || from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return statusRank[to] > statusRank[from]
}

// OrderItem is a snapshot of a dish at order time. Later catalog edits
// do not affect placed orders.
type OrderItem struct {
	DishID   string  `json:"dish"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Order struct {
	ID             string      `json:"id"`
	OrderNumber    string      `json:"orderNumber"`
	CustomerName   string      `json:"customerName"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	Address        string      `json:"address"`
	Items          []OrderItem `json:"items"`
	TotalAmount    float64     `json:"totalAmount"`
	PromoCode      string      `json:"promoCode,omitempty"`
	DiscountAmount float64     `json:"discountAmount"`
	FinalAmount    float64     `json:"finalAmount"`
	Status         Status      `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// MarshalJSON attaches the server-asserted canCancel flag so clients
// never have to reimplement the cancellation boundary.
func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	return json.Marshal(&struct {
		CanCancel bool   `json:"canCancel"`
		CreatedAt string `json:"createdAt"`
		*Alias
	}{
		CanCancel: o.Status.Cancelable(),
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
		Alias:     (*Alias)(&o),
	})
}
