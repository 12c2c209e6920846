package model

import "time"

// Product categories sold by the store.
const (
	CategoryCar     = "car"
	CategoryGrocery = "grocery"
)

// Product represents a vehicle or grocery item in the catalogue.
type Product struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Category          string    `json:"category" db:"category"`
	Price             int64     `json:"price" db:"price"`
	Description       string    `json:"description" db:"description"`
	ImageURL          string    `json:"imageUrl" db:"image_url"`
	Metadata          Metadata  `json:"metadata" db:"metadata"`
	InStock           bool      `json:"inStock" db:"in_stock"`
	StockQuantity     int       `json:"stockQuantity" db:"stock_quantity"`
	LowStockThreshold int       `json:"lowStockThreshold" db:"low_stock_threshold"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// ValidCategory reports whether category is sold by the store.
func ValidCategory(category string) bool {
	return category == CategoryCar || category == CategoryGrocery
}

// ProductRequest is the back-office payload for creating a product.
type ProductRequest struct {
	Name          string            `json:"name"`
	Category      string            `json:"category"`
	Price         int64             `json:"price"`
	Description   string            `json:"description"`
	ImageURL      string            `json:"imageUrl"`
	Metadata      map[string]string `json:"metadata"`
	InStock       bool              `json:"inStock"`
	StockQuantity int               `json:"stockQuantity"`
}
