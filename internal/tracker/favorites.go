package tracker

import "sync"

const favoritesKey = "favorites"

// Favorites is the persisted set of dish ids the user starred.
type Favorites struct {
	mu    sync.Mutex
	ids   []string
	store *Store
}

func NewFavorites(store *Store) *Favorites {
	f := &Favorites{store: store}
	store.Load(favoritesKey, &f.ids)
	return f
}

// Toggle flips a dish in or out of the set and reports whether it is
// now a favorite.
func (f *Favorites) Toggle(dishID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, id := range f.ids {
		if id == dishID {
			f.ids = append(f.ids[:i], f.ids[i+1:]...)
			f.store.Save(favoritesKey, f.ids)
			return false
		}
	}

	f.ids = append(f.ids, dishID)
	f.store.Save(favoritesKey, f.ids)
	return true
}

func (f *Favorites) Has(dishID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range f.ids {
		if id == dishID {
			return true
		}
	}
	return false
}

func (f *Favorites) List() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.ids))
	copy(out, f.ids)
	return out
}
