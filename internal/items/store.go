package items

import (
	"cmp"
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Store keeps items in memory.
type Store struct {
	mu     sync.RWMutex
	nextID int
	items  map[int]Item
	now    func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		nextID: 1,
		items:  make(map[int]Item),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create stores n under the next id.
func (s *Store) Create(n NewItem) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := Item{
		ID:        s.nextID,
		Name:      n.Name,
		Tags:      slices.Clone(n.Tags),
		Owner:     n.Owner,
		CreatedAt: s.now().UTC(),
	}
	s.items[item.ID] = item
	s.nextID++
	return item
}

// Get returns the item with id.
func (s *Store) Get(id int) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return Item{}, &NotFoundError{ID: id}
	}
	return item, nil
}

// Delete removes the item with id.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(s.items, id)
	return nil
}

// List returns the page of items matching q. Total counts every match.
func (s *Store) List(q ItemQuery) ItemList {
	s.mu.RLock()
	matches := lo.Filter(lo.Values(s.items), func(item Item, _ int) bool {
		return q.Tag == "" || slices.Contains(item.Tags, q.Tag)
	})
	s.mu.RUnlock()

	slices.SortFunc(matches, compareBy(q.Sort))

	limit := q.Limit
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	page := lo.Slice(matches, q.Offset, q.Offset+limit)
	return ItemList{Items: page, Total: len(matches)}
}

func compareBy(key string) func(a, b Item) int {
	switch key {
	case SortName:
		return func(a, b Item) int {
			return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
		}
	case SortCreated:
		return func(a, b Item) int {
			return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
		}
	default:
		return func(a, b Item) int {
			return cmp.Compare(a.ID, b.ID)
		}
	}
}

type storeKey struct{}

// Middleware makes the store available to the handlers of this package.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), storeKey{}, s)))
	})
}

func storeFrom(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(storeKey{}).(*Store)
	return s, ok
}
