// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/clinicledger/internal/models"
	"github.com/mmynk/clinicledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store and storage.BillRecorder
var (
	_ storage.Store        = (*SQLiteStore)(nil)
	_ storage.BillRecorder = (*SQLiteStore)(nil)
)

const productColumns = "id, name, category, price, stock, expiry_date, manufacturer, batch_number"

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite allows a single writer and pragmas are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SeedIfEmpty loads the demo catalog and patient directory into a fresh database.
// It reports whether seeding happened.
func (s *SQLiteStore) SeedIfEmpty(ctx context.Context) (bool, error) {
	var products, patients int
	err := s.db.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM products), (SELECT COUNT(*) FROM patients)",
	).Scan(&products, &patients)
	if err != nil {
		return false, fmt.Errorf("failed to count rows: %w", err)
	}

	seeded := false
	if products == 0 {
		for _, p := range storage.SeedProducts() {
			if err := s.CreateProduct(ctx, &p); err != nil {
				return false, err
			}
		}
		seeded = true
	}
	if patients == 0 {
		if err := s.AddPatients(ctx, storage.SeedPatients()...); err != nil {
			return false, err
		}
		seeded = true
	}
	return seeded, nil
}

// CreateProduct inserts a new product, generating its ID if unset.
func (s *SQLiteStore) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO products ("+productColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		product.ID, product.Name, product.Category, product.Price.String(), product.Stock,
		product.ExpiryDate, product.Manufacturer, product.BatchNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by ID.
func (s *SQLiteStore) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ?",
		productID,
	)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{Kind: "product", ID: productID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// ListProducts returns all products in insertion order.
func (s *SQLiteStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// UpdateProduct replaces every column of an existing product.
func (s *SQLiteStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = ?, category = ?, price = ?, stock = ?,
		 expiry_date = ?, manufacturer = ?, batch_number = ? WHERE id = ?`,
		product.Name, product.Category, product.Price.String(), product.Stock,
		product.ExpiryDate, product.Manufacturer, product.BatchNumber, product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return requireAffected(result, product.ID)
}

// DeleteProduct removes a product.
func (s *SQLiteStore) DeleteProduct(ctx context.Context, productID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return requireAffected(result, productID)
}

// ApplyDeductions checks and decrements stock inside one transaction.
// Any failure rolls the whole set back.
func (s *SQLiteStore) ApplyDeductions(ctx context.Context, deductions []models.Deduction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// First-seen order keeps errors deterministic.
	order, totals, err := storage.SumDeductions(deductions)
	if err != nil {
		return err
	}

	for _, id := range order {
		var (
			name  string
			stock int
		)
		err := tx.QueryRowContext(ctx, "SELECT name, stock FROM products WHERE id = ?", id).Scan(&name, &stock)
		if errors.Is(err, sql.ErrNoRows) {
			return &models.NotFoundError{Kind: "product", ID: id}
		}
		if err != nil {
			return fmt.Errorf("failed to read stock: %w", err)
		}
		if totals[id] > stock {
			return &models.InsufficientStockError{
				ProductID: id,
				Name:      name,
				Requested: totals[id],
				Available: stock,
			}
		}
		if _, err := tx.ExecContext(ctx, "UPDATE products SET stock = stock - ? WHERE id = ?", totals[id], id); err != nil {
			return fmt.Errorf("failed to deduct stock: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock,
		&p.ExpiryDate, &p.Manufacturer, &p.BatchNumber)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func requireAffected(result sql.Result, productID string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return &models.NotFoundError{Kind: "product", ID: productID}
	}
	return nil
}
