package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductPage is one page of a catalog listing.
type ProductPage struct {
	Products      []Product `json:"products"`
	TotalPages    int       `json:"total_pages"`
	CurrentPage   int       `json:"current_page"`
	TotalProducts int       `json:"total_products"`
}
