// Seed loads a sample catalog for local development. Existing rows with the
// same name are replaced rather than duplicated.
package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/core/domain"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/logger"
)

func sampleProducts() []domain.Product {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	return []domain.Product{
		{
			Name:        "Smartphone X",
			Description: "Latest smartphone with amazing features",
			Price:       price("999.99"),
			Stock:       50,
			Category:    "Electronics",
			ImageURL:    "https://example.com/smartphone.jpg",
		},
		{
			Name:        "Laptop Pro",
			Description: "High-performance laptop for professionals",
			Price:       price("1299.99"),
			Stock:       30,
			Category:    "Electronics",
			ImageURL:    "https://example.com/laptop.jpg",
		},
		{
			Name:        "Wireless Headphones",
			Description: "Premium wireless headphones with noise cancellation",
			Price:       price("199.99"),
			Stock:       100,
			Category:    "Electronics",
			ImageURL:    "https://example.com/headphones.jpg",
		},
		{
			Name:        "Smart Watch",
			Description: "Fitness and health tracking smartwatch",
			Price:       price("249.99"),
			Stock:       75,
			Category:    "Electronics",
			ImageURL:    "https://example.com/smartwatch.jpg",
		},
		{
			Name:        "Coffee Maker",
			Description: "Automatic coffee maker with timer",
			Price:       price("89.99"),
			Stock:       40,
			Category:    "Home Appliances",
			ImageURL:    "https://example.com/coffeemaker.jpg",
		},
		{
			Name:        "Blender",
			Description: "High-speed blender for smoothies and more",
			Price:       price("79.99"),
			Stock:       60,
			Category:    "Home Appliances",
			ImageURL:    "https://example.com/blender.jpg",
		},
	}
}

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "storefront-seed",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Error("failed to open mysql", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping mysql", "error", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	for _, p := range sampleProducts() {
		_, err := db.ExecContext(ctx, `
			INSERT INTO products (id, name, price, stock, category, description, image_url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				price = VALUES(price), stock = VALUES(stock), category = VALUES(category),
				description = VALUES(description), image_url = VALUES(image_url), updated_at = VALUES(updated_at)`,
			uuid.NewString(), p.Name, p.Price, p.Stock, p.Category, p.Description, p.ImageURL, now, now,
		)
		if err != nil {
			log.Error("failed to seed product", "name", p.Name, "error", err)
			os.Exit(1)
		}
		log.Info("seeded product", "name", p.Name, "stock", p.Stock)
	}

	log.Info("seeding complete", "products", len(sampleProducts()))
}
