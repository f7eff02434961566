package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/storefront/internal/core/domain"
	"github.com/example/storefront/internal/port"
)

const productColumns = "id, name, price, stock, category, description, image_url, created_at, updated_at"

type MySQLCatalogRepository struct {
	db *sql.DB
}

func NewMySQLCatalogRepository(db *sql.DB) *MySQLCatalogRepository {
	return &MySQLCatalogRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Category,
		&p.Description, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

func (r *MySQLCatalogRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

func (r *MySQLCatalogRepository) FindByIDForUpdate(ctx context.Context, tx port.Tx, id string) (*domain.Product, error) {
	stx, err := unwrap(tx)
	if err != nil {
		return nil, err
	}
	row := stx.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ? FOR UPDATE`, id)
	return scanProduct(row)
}

func (r *MySQLCatalogRepository) List(ctx context.Context, q port.ListQuery) ([]domain.Product, int, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}
	if q.Search != "" {
		where = append(where, "(name LIKE ? OR description LIKE ?)")
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	offset := (q.Page - 1) * q.Limit
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products`+clause+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, q.Limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, q.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}

	return products, total, nil
}

func (r *MySQLCatalogRepository) DecrementStock(ctx context.Context, tx port.Tx, id string, quantity int) error {
	stx, err := unwrap(tx)
	if err != nil {
		return err
	}

	// The stock >= ? guard backs the no-oversell invariant at the database
	// even if a lock ever outlives its holder.
	result, err := stx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - ?, updated_at = NOW()
		WHERE id = ? AND stock >= ?`,
		quantity, id, quantity,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInsufficientStock
	}

	return nil
}
