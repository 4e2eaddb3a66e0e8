// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/clinicledger/internal/models"
)

// Store defines the interface for catalog and patient directory storage.
// This abstraction allows swapping storage backends (memory, SQLite, etc.)
// without changing the catalog or billing layers.
type Store interface {
	// CreateProduct persists a new product.
	// The product.ID field will be populated by the store if empty.
	CreateProduct(ctx context.Context, product *models.Product) error

	// GetProduct retrieves a product by its ID.
	// Returns a *models.NotFoundError if the product does not exist.
	GetProduct(ctx context.Context, productID string) (*models.Product, error)

	// ListProducts returns every product in insertion order.
	ListProducts(ctx context.Context) ([]models.Product, error)

	// UpdateProduct replaces all fields of an existing product.
	// Returns a *models.NotFoundError if the product does not exist.
	UpdateProduct(ctx context.Context, product *models.Product) error

	// DeleteProduct removes a product.
	// Returns a *models.NotFoundError if the product does not exist.
	DeleteProduct(ctx context.Context, productID string) error

	// ApplyDeductions decrements stock for every deduction as one unit.
	// If any deduction would drive stock negative or names an unknown product,
	// nothing is applied and the corresponding typed error is returned.
	// A quantity below 1 is a *models.ValidationError.
	ApplyDeductions(ctx context.Context, deductions []models.Deduction) error

	// GetPatient retrieves a patient by ID.
	GetPatient(ctx context.Context, patientID string) (*models.Patient, error)

	// FindPatientByPhone retrieves a patient by phone number.
	// Numbers are compared on their digits only.
	FindPatientByPhone(ctx context.Context, phone string) (*models.Patient, error)

	// ListPatients returns the whole patient directory.
	ListPatients(ctx context.Context) ([]models.Patient, error)

	// Close releases any resources held by the store.
	Close() error
}

// BillRecorder is implemented by stores that keep a receipt log of committed bills.
type BillRecorder interface {
	RecordBill(ctx context.Context, bill *models.CommittedBill) error
}
