package models

import "github.com/shopspring/decimal"

// Product represents a pharmacy catalog entry.
type Product struct {
	// ID is the unique identifier for the product (UUID format).
	// Assigned by the catalog on creation and never changes.
	ID string `json:"id"`

	// Name is the display name (e.g., "Paracetamol 500mg").
	Name string `json:"name"`

	// Category groups products on the inventory screen (e.g., "Antibiotic").
	Category string `json:"category"`

	// Price is the unit price. Never negative.
	Price decimal.Decimal `json:"price"`

	// Stock is the number of units on hand. Never negative.
	// Decremented by bill commits, replaced by administrative edits.
	Stock int `json:"stock"`

	// ExpiryDate is the batch expiry in YYYY-MM-DD form.
	ExpiryDate string `json:"expiry_date"`

	Manufacturer string `json:"manufacturer"`
	BatchNumber  string `json:"batch_number"`
}

// ProductInput carries the administrative fields for creating or replacing a product.
// It is validated before a Product is built from it.
type ProductInput struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	ExpiryDate   string          `json:"expiry_date"`
	Manufacturer string          `json:"manufacturer"`
	BatchNumber  string          `json:"batch_number"`
}

// Apply copies every mutable field of the input onto p.
func (in ProductInput) Apply(p *Product) {
	p.Name = in.Name
	p.Category = in.Category
	p.Price = in.Price
	p.Stock = in.Stock
	p.ExpiryDate = in.ExpiryDate
	p.Manufacturer = in.Manufacturer
	p.BatchNumber = in.BatchNumber
}

// Deduction is a stock decrement applied to one product as part of a commit.
type Deduction struct {
	ProductID string
	Quantity  int
}
