// Package catalog manages the pharmacy product catalog: administrative CRUD,
// low-stock detection and stock valuation.
package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mmynk/clinicledger/internal/calculator"
	"github.com/mmynk/clinicledger/internal/models"
	"github.com/mmynk/clinicledger/internal/storage"
)

// DefaultLowStockThreshold is the stock level below which a product is flagged.
const DefaultLowStockThreshold = 100

// DeleteListener is notified after a product is removed from the catalog.
type DeleteListener interface {
	ProductDeleted(productID string)
}

// Summary holds the inventory dashboard figures.
type Summary struct {
	TotalProducts int             `json:"total_products"`
	StockValue    decimal.Decimal `json:"stock_value"`
	LowStockCount int             `json:"low_stock_count"`
}

// Catalog wraps a storage.Store with validation and catalog-level queries.
type Catalog struct {
	store     storage.Store
	threshold int

	mu        sync.Mutex
	listeners []DeleteListener
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLowStockThreshold overrides DefaultLowStockThreshold.
func WithLowStockThreshold(n int) Option {
	return func(c *Catalog) {
		c.threshold = n
	}
}

// New creates a Catalog backed by store.
func New(store storage.Store, opts ...Option) *Catalog {
	c := &Catalog{store: store, threshold: DefaultLowStockThreshold}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store exposes the underlying store for collaborators that share it.
func (c *Catalog) Store() storage.Store {
	return c.store
}

// Threshold returns the configured low-stock threshold.
func (c *Catalog) Threshold() int {
	return c.threshold
}

// Subscribe registers l to be told about product deletions.
func (c *Catalog) Subscribe(l DeleteListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Unsubscribe removes l. Unknown listeners are ignored.
func (c *Catalog) Unsubscribe(l DeleteListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.listeners {
		if existing == l {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// AddProduct validates the input and inserts a new product with a fresh ID.
func (c *Catalog) AddProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	p := &models.Product{}
	in.Apply(p)
	if err := c.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	slog.Info("Product added", "product_id", p.ID, "name", p.Name, "stock", p.Stock)
	return p, nil
}

// UpdateProduct replaces every mutable field of the product with the given ID.
func (c *Catalog) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	p := &models.Product{ID: id}
	in.Apply(p)
	if err := c.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}

	slog.Info("Product updated", "product_id", id, "stock", p.Stock)
	return p, nil
}

// DeleteProduct removes the product and tells every subscribed listener.
func (c *Catalog) DeleteProduct(ctx context.Context, id string) error {
	if err := c.store.DeleteProduct(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	listeners := append([]DeleteListener(nil), c.listeners...)
	c.mu.Unlock()
	for _, l := range listeners {
		l.ProductDeleted(id)
	}

	slog.Info("Product deleted", "product_id", id, "listeners", len(listeners))
	return nil
}

// GetProduct returns the product with the given ID.
func (c *Catalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return c.store.GetProduct(ctx, id)
}

// ListProducts returns the whole catalog.
func (c *Catalog) ListProducts(ctx context.Context) ([]models.Product, error) {
	return c.store.ListProducts(ctx)
}

// Search returns products whose name, category or manufacturer contains term,
// ignoring case. An empty term matches everything.
func (c *Catalog) Search(ctx context.Context, term string) ([]models.Product, error) {
	products, err := c.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products, nil
	}

	var matches []models.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Category), term) ||
			strings.Contains(strings.ToLower(p.Manufacturer), term) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// IsLowStock reports whether the product's stock is below the threshold.
func (c *Catalog) IsLowStock(p models.Product) bool {
	return p.Stock < c.threshold
}

// LowStock returns every product currently below the threshold.
func (c *Catalog) LowStock(ctx context.Context) ([]models.Product, error) {
	products, err := c.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	var low []models.Product
	for _, p := range products {
		if c.IsLowStock(p) {
			low = append(low, p)
		}
	}
	return low, nil
}

// TotalStockValue sums price × stock across products.
func TotalStockValue(products []models.Product) decimal.Decimal {
	return calculator.TotalStockValue(products)
}

// Summary computes the dashboard figures for the current catalog.
func (c *Catalog) Summary(ctx context.Context) (*Summary, error) {
	products, err := c.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{
		TotalProducts: len(products),
		StockValue:    calculator.TotalStockValue(products),
		LowStockCount: calculator.CountBelow(products, c.threshold),
	}, nil
}
