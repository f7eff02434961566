package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/storefront/internal/core/domain"
	"github.com/example/storefront/internal/port"
	"github.com/google/uuid"
)

type CheckoutConfig struct {
	// LockTTL is longer than the cart mutation lock because a checkout spans
	// a multi-entity transaction.
	LockTTL time.Duration
}

// CheckoutService turns a cart into an order atomically: stock decremented,
// order created, cart deleted, all inside one transaction, or none of it.
type CheckoutService struct {
	carts   port.CartRepository
	catalog port.CatalogRepository
	orders  port.OrderRepository
	cache   port.CacheRepository
	txm     port.TxManager
	cfg     CheckoutConfig
	log     *slog.Logger
}

func NewCheckoutService(carts port.CartRepository, catalog port.CatalogRepository, orders port.OrderRepository, cache port.CacheRepository, txm port.TxManager, cfg CheckoutConfig, log *slog.Logger) *CheckoutService {
	return &CheckoutService{
		carts:   carts,
		catalog: catalog,
		orders:  orders,
		cache:   cache,
		txm:     txm,
		cfg:     cfg,
		log:     log,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, userID string, address domain.ShippingAddress, paymentInfo string) (*domain.Order, error) {
	release, err := acquireLock(ctx, s.cache, checkoutLockKey(userID), s.cfg.LockTTL, s.log)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTxFailed, err)
	}
	// Rollback is a no-op once Commit succeeds; until then it guarantees no
	// partial stock decrement, order or cart deletion survives a failure.
	defer tx.Rollback()

	cart, err := s.carts.FindByUserForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil || cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	// Authorize against fresh product rows, never the cart's snapshot.
	productKeys := make([]string, 0, len(cart.Items))
	for _, it := range cart.Items {
		product, err := s.catalog.FindByIDForUpdate(ctx, tx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("load product: %w", err)
		}
		if product == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, it.ProductID)
		}
		if product.Stock < it.Quantity {
			return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, product.Name)
		}

		if err := s.catalog.DecrementStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return nil, fmt.Errorf("decrement stock for %s: %w", it.ProductID, err)
		}
		productKeys = append(productKeys, productCacheKey(it.ProductID))
	}

	// Billing uses the price snapshot so the customer pays what they saw.
	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           cart.Items,
		Total:           cart.Total(),
		ShippingAddress: address,
		PaymentInfo:     paymentInfo,
		Status:          domain.OrderStatusProcessing,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.orders.Create(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if err := s.carts.DeleteByID(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("delete cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTxFailed, err)
	}

	// Post-commit invalidation. Stale entries expire by TTL anyway, so a
	// failure here is logged rather than failing a committed checkout.
	keys := append(productKeys, cartCacheKey(userID))
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("post-checkout cache invalidation failed", "user_id", userID, "error", err)
	}
	// Listing caches are keyed by query shape and cannot be targeted, so
	// every listing view is dropped after any stock change.
	if err := s.cache.DeleteByPattern(ctx, productListPattern); err != nil {
		s.log.Warn("listing cache invalidation failed", "error", err)
	}

	s.log.Info("checkout complete",
		"user_id", userID,
		"order_id", order.ID,
		"items", len(order.Items),
		"total", order.Total.String(),
	)

	return order, nil
}
