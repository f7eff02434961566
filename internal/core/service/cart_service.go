package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/storefront/internal/core/domain"
	"github.com/example/storefront/internal/port"
	"github.com/google/uuid"
)

type CartConfig struct {
	LockTTL  time.Duration // per-user mutation lock
	CacheTTL time.Duration // cart read-through entries
}

// CartService serializes mutations of a user's cart behind a lock key and
// keeps the cart cache coherent. Reads bypass the lock entirely.
type CartService struct {
	carts   port.CartRepository
	catalog port.CatalogRepository
	cache   port.CacheRepository
	cfg     CartConfig
	log     *slog.Logger
}

func NewCartService(carts port.CartRepository, catalog port.CatalogRepository, cache port.CacheRepository, cfg CartConfig, log *slog.Logger) *CartService {
	return &CartService{
		carts:   carts,
		catalog: catalog,
		cache:   cache,
		cfg:     cfg,
		log:     log,
	}
}

// GetCart is an unlocked read-through: cached blob if present, otherwise the
// repository, lazily creating an empty cart on first use.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	key := cartCacheKey(userID)

	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read cart cache: %w", err)
	}
	if cached != nil {
		var cart domain.Cart
		if err := json.Unmarshal(cached, &cart); err == nil {
			return &cart, nil
		}
		// Undecodable entry: fall through to the repository and rewrite it.
		s.log.Warn("dropping corrupt cart cache entry", "key", key)
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		cart = &domain.Cart{
			ID:        uuid.NewString(),
			UserID:    userID,
			Items:     []domain.LineItem{},
			UpdatedAt: time.Now().UTC(),
		}
		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, fmt.Errorf("create cart: %w", err)
		}
	}

	if blob, err := json.Marshal(cart); err == nil {
		if err := s.cache.Set(ctx, key, blob, s.cfg.CacheTTL); err != nil {
			s.log.Warn("cart cache populate failed", "key", key, "error", err)
		}
	}

	return cart, nil
}

// AddItem appends a line item with a price and name snapshot, or bumps the
// quantity when the product is already in the cart. The stock check here is
// advisory; checkout performs the authoritative one.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	release, err := acquireLock(ctx, s.cache, cartLockKey(userID), s.cfg.LockTTL, s.log)
	if err != nil {
		return nil, err
	}
	defer release()

	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	if product.Stock < quantity {
		return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, product.Name)
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		cart = &domain.Cart{
			ID:     uuid.NewString(),
			UserID: userID,
		}
	}

	if i := cart.FindItemByProduct(productID); i >= 0 {
		cart.Items[i].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, domain.LineItem{
			ID:        uuid.NewString(),
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
		})
	}

	return cart, s.persist(ctx, cart)
}

// UpdateItem overwrites a line item's quantity after re-validating its
// product and stock.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	release, err := acquireLock(ctx, s.cache, cartLockKey(userID), s.cfg.LockTTL, s.log)
	if err != nil {
		return nil, err
	}
	defer release()

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		return nil, domain.ErrCartNotFound
	}

	i := cart.FindItem(itemID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}

	product, err := s.catalog.FindByID(ctx, cart.Items[i].ProductID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, cart.Items[i].ProductID)
	}
	if product.Stock < quantity {
		return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, product.Name)
	}

	cart.Items[i].Quantity = quantity

	return cart, s.persist(ctx, cart)
}

// RemoveItem deletes a single line item.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	release, err := acquireLock(ctx, s.cache, cartLockKey(userID), s.cfg.LockTTL, s.log)
	if err != nil {
		return nil, err
	}
	defer release()

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		return nil, domain.ErrCartNotFound
	}

	i := cart.FindItem(itemID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}

	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

	return cart, s.persist(ctx, cart)
}

func (s *CartService) persist(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	if err := s.cache.Delete(ctx, cartCacheKey(cart.UserID)); err != nil {
		return fmt.Errorf("invalidate cart cache: %w", err)
	}
	return nil
}
