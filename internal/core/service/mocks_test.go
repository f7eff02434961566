package service

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/example/storefront/internal/core/domain"
	"github.com/example/storefront/internal/port"
)

// memCache is a mutex-guarded in-memory stand-in for the Redis adapter.
// TTLs are accepted and ignored; none of the tests wait for expiry.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]byte(nil), value...)
	return nil
}

func (c *memCache) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false, nil
	}
	c.entries[key] = append([]byte(nil), value...)
	return true, nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *memCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if ok, _ := path.Match(pattern, k); ok {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// memStore backs the catalog, cart and order repository ports with maps.
// Transactional writes are staged on a memTx and applied under the store
// lock at commit, with stock re-verified so concurrent commits cannot
// oversell (the role the guarded UPDATE plays in MySQL).
type memStore struct {
	mu       sync.Mutex
	products map[string]domain.Product
	carts    map[string]domain.Cart // keyed by user ID
	orders   map[string]domain.Order

	failSave        error
	failCreateOrder error
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]domain.Product),
		carts:    make(map[string]domain.Cart),
		orders:   make(map[string]domain.Order),
	}
}

func copyCart(c domain.Cart) domain.Cart {
	c.Items = append([]domain.LineItem(nil), c.Items...)
	return c
}

func (s *memStore) putProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *memStore) stock(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].Stock
}

func (s *memStore) cartFor(userID string) (domain.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return domain.Cart{}, false
	}
	return copyCart(c), true
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// memTx stages writes until Commit.
type memTx struct {
	store      *memStore
	decrements map[string]int
	order      *domain.Order
	deleteCart string
	committed  bool
	rolledBack bool
}

func (t *memTx) Commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, qty := range t.decrements {
		if s.products[id].Stock < qty {
			return domain.ErrInsufficientStock
		}
	}

	for id, qty := range t.decrements {
		p := s.products[id]
		p.Stock -= qty
		s.products[id] = p
	}
	if t.order != nil {
		s.orders[t.order.ID] = *t.order
	}
	if t.deleteCart != "" {
		for user, c := range s.carts {
			if c.ID == t.deleteCart {
				delete(s.carts, user)
			}
		}
	}

	t.committed = true
	return nil
}

func (t *memTx) Rollback() error {
	if t.committed {
		return nil
	}
	t.rolledBack = true
	return nil
}

func (t *memTx) staged(productID string) int {
	if t.decrements == nil {
		return 0
	}
	return t.decrements[productID]
}

type memTxManager struct {
	store *memStore
	mu    sync.Mutex
	last  *memTx
}

func (m *memTxManager) Begin(ctx context.Context) (port.Tx, error) {
	tx := &memTx{store: m.store, decrements: make(map[string]int)}
	m.mu.Lock()
	m.last = tx
	m.mu.Unlock()
	return tx, nil
}

// Catalog port.

type memCatalogRepo struct{ store *memStore }

func (r *memCatalogRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memCatalogRepo) FindByIDForUpdate(ctx context.Context, tx port.Tx, id string) (*domain.Product, error) {
	mtx := tx.(*memTx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	p.Stock -= mtx.staged(id) // the tx sees its own writes
	return &p, nil
}

func (r *memCatalogRepo) List(ctx context.Context, q port.ListQuery) ([]domain.Product, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Product
	for _, p := range r.store.products {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memCatalogRepo) DecrementStock(ctx context.Context, tx port.Tx, id string, quantity int) error {
	mtx := tx.(*memTx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok || p.Stock-mtx.staged(id) < quantity {
		return domain.ErrInsufficientStock
	}
	mtx.decrements[id] += quantity
	return nil
}

// Cart port.

type memCartRepo struct{ store *memStore }

func (r *memCartRepo) FindByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	c, ok := r.store.cartFor(userID)
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memCartRepo) FindByUserForUpdate(ctx context.Context, tx port.Tx, userID string) (*domain.Cart, error) {
	return r.FindByUser(ctx, userID)
}

func (r *memCartRepo) Save(ctx context.Context, cart *domain.Cart) error {
	if r.store.failSave != nil {
		return r.store.failSave
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.carts[cart.UserID] = copyCart(*cart)
	return nil
}

func (r *memCartRepo) DeleteByID(ctx context.Context, tx port.Tx, cartID string) error {
	tx.(*memTx).deleteCart = cartID
	return nil
}

// Order port.

type memOrderRepo struct{ store *memStore }

func (r *memOrderRepo) Create(ctx context.Context, tx port.Tx, order *domain.Order) error {
	if r.store.failCreateOrder != nil {
		return r.store.failCreateOrder
	}
	o := *order
	o.Items = append([]domain.LineItem(nil), order.Items...)
	tx.(*memTx).order = &o
	return nil
}
