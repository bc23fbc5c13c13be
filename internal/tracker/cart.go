package tracker

import (
	"sync"

	"bistro/internal/model"
)

const cartKey = "cart"

type CartItem struct {
	DishID   string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Quantity int     `json:"quantity"`
}

// Cart holds the lines of the order being assembled. Persisted after
// every mutation, like the rest of the local state.
type Cart struct {
	mu    sync.Mutex
	items []CartItem
	store *Store
}

func NewCart(store *Store) *Cart {
	c := &Cart{store: store}
	store.Load(cartKey, &c.items)
	return c
}

// AddDish puts a dish in the cart, bumping the quantity if the dish is
// already there.
func (c *Cart) AddDish(d model.Dish) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].DishID == d.ID {
			c.items[i].Quantity++
			c.store.Save(cartKey, c.items)
			return
		}
	}

	c.items = append(c.items, CartItem{
		DishID:   d.ID,
		Name:     d.Name,
		Price:    d.Price,
		Image:    d.Image,
		Quantity: 1,
	})
	c.store.Save(cartKey, c.items)
}

// SetQuantity adjusts a line; zero or less removes it.
func (c *Cart) SetQuantity(dishID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.removeLocked(dishID)
		return
	}

	for i := range c.items {
		if c.items[i].DishID == dishID {
			c.items[i].Quantity = quantity
			c.store.Save(cartKey, c.items)
			return
		}
	}
}

func (c *Cart) Remove(dishID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(dishID)
}

func (c *Cart) removeLocked(dishID string) {
	kept := c.items[:0]
	for _, it := range c.items {
		if it.DishID != dishID {
			kept = append(kept, it)
		}
	}
	c.items = kept
	c.store.Save(cartKey, c.items)
}

func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, it := range c.items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.store.Save(cartKey, c.items)
}
