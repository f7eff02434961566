package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/storefront/internal/core/domain"
	"github.com/example/storefront/internal/port"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) Create(ctx context.Context, tx port.Tx, order *domain.Order) error {
	stx, err := unwrap(tx)
	if err != nil {
		return err
	}

	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}

	_, err = stx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total, shipping_address, payment_info, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.Total, address, order.PaymentInfo,
		order.Status, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for pos, it := range order.Items {
		_, err := stx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, price, quantity, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			it.ID, order.ID, it.ProductID, it.Name, it.Price, it.Quantity, pos,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

// FindByID is used by tests and ops tooling; orders are immutable once created.
func (r *MySQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var (
		o       domain.Order
		address []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, total, shipping_address, payment_info, status, created_at
		FROM orders WHERE id = ?`, id,
	).Scan(&o.ID, &o.UserID, &o.Total, &address, &o.PaymentInfo, &o.Status, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, name, price, quantity
		FROM order_items WHERE order_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.LineItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return &o, nil
}
