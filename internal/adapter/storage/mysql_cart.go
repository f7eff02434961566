package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/storefront/internal/core/domain"
	"github.com/example/storefront/internal/port"
)

type MySQLCartRepository struct {
	db *sql.DB
}

func NewMySQLCartRepository(db *sql.DB) *MySQLCartRepository {
	return &MySQLCartRepository{db: db}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func findCart(ctx context.Context, q querier, userID string, forUpdate bool) (*domain.Cart, error) {
	query := `SELECT id, user_id, updated_at FROM carts WHERE user_id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var cart domain.Cart
	err := q.QueryRowContext(ctx, query, userID).Scan(&cart.ID, &cart.UserID, &cart.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, product_id, name, price, quantity
		FROM cart_items WHERE cart_id = ? ORDER BY position`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.LineItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}

	return &cart, nil
}

func (r *MySQLCartRepository) FindByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return findCart(ctx, r.db, userID, false)
}

func (r *MySQLCartRepository) FindByUserForUpdate(ctx context.Context, tx port.Tx, userID string) (*domain.Cart, error) {
	stx, err := unwrap(tx)
	if err != nil {
		return nil, err
	}
	return findCart(ctx, stx, userID, true)
}

// Save upserts the cart row and replaces its line items. It runs in its own
// short transaction so the cart is written as a unit, the way a single
// document write would be.
func (r *MySQLCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE updated_at = VALUES(updated_at)`,
		cart.ID, cart.UserID, cart.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, cart.ID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}

	for pos, it := range cart.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cart_items (id, cart_id, product_id, name, price, quantity, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			it.ID, cart.ID, it.ProductID, it.Name, it.Price, it.Quantity, pos,
		)
		if err != nil {
			return fmt.Errorf("insert cart item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *MySQLCartRepository) DeleteByID(ctx context.Context, tx port.Tx, cartID string) error {
	stx, err := unwrap(tx)
	if err != nil {
		return err
	}

	if _, err := stx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, cartID); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}
	if _, err := stx.ExecContext(ctx, `DELETE FROM carts WHERE id = ?`, cartID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	return nil
}
