package models

import "time"

// Product statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Product represents a product in the catalog. CategoryName is populated on
// reads that join the categories table and omitted elsewhere.
type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	Price        float64   `json:"price"`
	Quantity     int       `json:"quantity"`
	CategoryID   *int64    `json:"category_id"`
	CategoryName *string   `json:"category_name,omitempty"`
	ImageURL     *string   `json:"image_url"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
