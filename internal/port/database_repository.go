package port

import (
	"context"

	"github.com/example/storefront/internal/core/domain"
)

// ListQuery selects a catalog listing page. Category and Search are
// optional filters.
type ListQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
}

type CatalogRepository interface {
	// FindByID returns the product, or nil when absent.
	FindByID(ctx context.Context, id string) (*domain.Product, error)

	// FindByIDForUpdate reads the product inside tx with a row lock,
	// so checkout authorizes against fresh stock.
	FindByIDForUpdate(ctx context.Context, tx Tx, id string) (*domain.Product, error)

	// List returns one listing page plus the total product count.
	List(ctx context.Context, q ListQuery) ([]domain.Product, int, error)

	// DecrementStock subtracts quantity inside tx. Returns
	// domain.ErrInsufficientStock if stock would go negative.
	DecrementStock(ctx context.Context, tx Tx, id string, quantity int) error
}

type CartRepository interface {
	// FindByUser returns the user's cart, or nil when absent.
	FindByUser(ctx context.Context, userID string) (*domain.Cart, error)

	// FindByUserForUpdate reads the cart inside tx with a row lock.
	FindByUserForUpdate(ctx context.Context, tx Tx, userID string) (*domain.Cart, error)

	// Save upserts the cart and replaces its line items atomically.
	Save(ctx context.Context, cart *domain.Cart) error

	// DeleteByID removes the cart and its items inside tx.
	DeleteByID(ctx context.Context, tx Tx, cartID string) error
}

type OrderRepository interface {
	Create(ctx context.Context, tx Tx, order *domain.Order) error
}
