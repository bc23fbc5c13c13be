package tracker

import (
	"sort"
	"sync"
	"time"

	"bistro/internal/model"
)

const ordersKey = "active_orders"

// Entry is one tracked order in the local cache.
type Entry struct {
	OrderNumber      string       `json:"orderNumber"`
	Status           model.Status `json:"status"`
	CreatedAt        time.Time    `json:"createdAt"`
	LastChecked      time.Time    `json:"lastChecked"`
	MarkedForRemoval bool         `json:"markedForRemoval,omitempty"`
	RemovalTime      time.Time    `json:"removalTime,omitempty"`
}

// Cache is the client-local mirror of in-flight orders. Entries that
// reach a terminal status linger for a grace period, anything older
// than the retention horizon is dropped regardless of status. Every
// mutation persists immediately.
type Cache struct {
	mu        sync.Mutex
	entries   []Entry
	store     *Store
	grace     time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewCache(store *Store, grace, retention time.Duration) *Cache {
	c := &Cache{
		store:     store,
		grace:     grace,
		retention: retention,
		now:       time.Now,
	}
	store.Load(ordersKey, &c.entries)
	return c
}

// Add starts tracking an order. Adding an already-tracked number is a
// no-op. Status defaults to accepted, createdAt to now.
func (c *Cache) Add(number string, status model.Status, createdAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.find(number) != nil {
		return
	}

	now := c.now()
	if status == "" {
		status = model.StatusAccepted
	}
	if createdAt.IsZero() {
		createdAt = now
	}

	c.entries = append(c.entries, Entry{
		OrderNumber: number,
		Status:      status,
		CreatedAt:   createdAt,
		LastChecked: now,
	})
	c.store.Save(ordersKey, c.entries)
}

// UpdateStatus overwrites the cached status. The first terminal status
// schedules removal after the grace period; repeated terminal updates
// do not reset the timer.
func (c *Cache) UpdateStatus(number string, status model.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.find(number)
	if e == nil {
		return
	}

	now := c.now()
	e.Status = status
	e.LastChecked = now

	if status.Terminal() && !e.MarkedForRemoval {
		e.MarkedForRemoval = true
		e.RemovalTime = now.Add(c.grace)
	}

	c.store.Save(ordersKey, c.entries)
}

func (c *Cache) Remove(number string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.OrderNumber != number {
			kept = append(kept, e)
		}
	}
	c.entries = kept
	c.store.Save(ordersKey, c.entries)
}

// Prune drops entries past the retention horizon and terminal entries
// whose removal time has elapsed.
func (c *Cache) Prune() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	cutoff := now.Add(-c.retention)

	kept := c.entries[:0]
	changed := false
	for _, e := range c.entries {
		if !e.CreatedAt.After(cutoff) || (e.MarkedForRemoval && !e.RemovalTime.After(now)) {
			changed = true
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept

	if changed {
		c.store.Save(ordersKey, c.entries)
	}
}

// SweepMarked removes only the terminal entries whose grace period has
// elapsed; the poll loop runs this after every cycle.
func (c *Cache) SweepMarked() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	kept := c.entries[:0]
	changed := false
	for _, e := range c.entries {
		if e.MarkedForRemoval && !e.RemovalTime.After(now) {
			changed = true
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept

	if changed {
		c.store.Save(ordersKey, c.entries)
	}
}

// Pending returns the entries the poll loop should refresh: everything
// not yet in a terminal state.
func (c *Cache) Pending() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Entry
	for _, e := range c.entries {
		if !e.Status.Terminal() {
			out = append(out, e)
		}
	}
	return out
}

// Snapshot returns all entries, newest first, for display.
func (c *Cache) Snapshot() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// find assumes c.mu is held.
func (c *Cache) find(number string) *Entry {
	for i := range c.entries {
		if c.entries[i].OrderNumber == number {
			return &c.entries[i]
		}
	}
	return nil
}
