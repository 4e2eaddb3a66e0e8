// Package memory provides an in-process implementation of the storage.Store interface.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mmynk/clinicledger/internal/models"
	"github.com/mmynk/clinicledger/internal/storage"
)

// Ensure MemoryStore implements storage.Store
var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore keeps products and patients in maps guarded by a single lock.
// Product order follows insertion so listings are stable.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]models.Product
	order    []string
	patients []models.Patient
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{products: make(map[string]models.Product)}
}

// NewSeeded creates a MemoryStore loaded with the demo catalog and patient directory.
func NewSeeded() *MemoryStore {
	s := New()
	for _, p := range storage.SeedProducts() {
		p.ID = uuid.New().String()
		s.products[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	s.patients = storage.SeedPatients()
	return s
}

// AddPatients appends patients to the directory.
func (s *MemoryStore) AddPatients(patients ...models.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients = append(s.patients, patients...)
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// CreateProduct stores a copy of the product.
func (s *MemoryStore) CreateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, exists := s.products[product.ID]; exists {
		return models.NewValidationError("id", "duplicate product id "+product.ID)
	}
	s.products[product.ID] = *product
	s.order = append(s.order, product.ID)
	return nil
}

// GetProduct returns a copy of the stored product.
func (s *MemoryStore) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, &models.NotFoundError{Kind: "product", ID: productID}
	}
	return &p, nil
}

// ListProducts returns copies of all products in insertion order.
func (s *MemoryStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, 0, len(s.order))
	for _, id := range s.order {
		products = append(products, s.products[id])
	}
	return products, nil
}

// UpdateProduct replaces the stored product.
func (s *MemoryStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return &models.NotFoundError{Kind: "product", ID: product.ID}
	}
	s.products[product.ID] = *product
	return nil
}

// DeleteProduct removes the product.
func (s *MemoryStore) DeleteProduct(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return &models.NotFoundError{Kind: "product", ID: productID}
	}
	delete(s.products, productID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == productID })
	return nil
}

// ApplyDeductions validates every deduction against current stock before
// touching any of them.
func (s *MemoryStore) ApplyDeductions(ctx context.Context, deductions []models.Deduction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Repeated IDs are checked against their sum.
	order, totals, err := storage.SumDeductions(deductions)
	if err != nil {
		return err
	}
	for _, id := range order {
		p, ok := s.products[id]
		if !ok {
			return &models.NotFoundError{Kind: "product", ID: id}
		}
		if want := totals[id]; want > p.Stock {
			return &models.InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: want,
				Available: p.Stock,
			}
		}
	}

	for id, qty := range totals {
		p := s.products[id]
		p.Stock -= qty
		s.products[id] = p
	}
	return nil
}

// GetPatient looks a patient up by ID.
func (s *MemoryStore) GetPatient(ctx context.Context, patientID string) (*models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.patients {
		if p.ID == patientID {
			return &p, nil
		}
	}
	return nil, &models.NotFoundError{Kind: "patient", ID: patientID}
}

// FindPatientByPhone looks a patient up by the digits of their phone number.
func (s *MemoryStore) FindPatientByPhone(ctx context.Context, phone string) (*models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := storage.PhoneDigits(phone)
	if want != "" {
		for _, p := range s.patients {
			if storage.PhoneDigits(p.Phone) == want {
				return &p, nil
			}
		}
	}
	return nil, &models.NotFoundError{Kind: "patient", ID: phone}
}

// ListPatients returns a copy of the directory.
func (s *MemoryStore) ListPatients(ctx context.Context) ([]models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.patients), nil
}
