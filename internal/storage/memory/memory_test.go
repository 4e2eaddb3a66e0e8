package memory

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/clinicledger/internal/models"
)

func TestNewSeeded(t *testing.T) {
	store := NewSeeded()
	ctx := context.Background()

	products, err := store.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 4 {
		t.Fatalf("expected 4 seeded products, got %d", len(products))
	}
	if products[0].Name != "Paracetamol 500mg" {
		t.Errorf("expected Paracetamol first, got %s", products[0].Name)
	}

	patient, err := store.FindPatientByPhone(ctx, "+91-99400-25603")
	if err != nil {
		t.Fatalf("FindPatientByPhone failed: %v", err)
	}
	if patient.Name != "Rajesh Kumar" {
		t.Errorf("expected Rajesh Kumar, got %s", patient.Name)
	}
}

func TestGetProductReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()

	p := &models.Product{Name: "Gauze", Category: "Supplies", Price: decimal.NewFromInt(5), Stock: 10}
	if err := store.CreateProduct(ctx, p); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	got, _ := store.GetProduct(ctx, p.ID)
	got.Stock = 0

	again, _ := store.GetProduct(ctx, p.ID)
	if again.Stock != 10 {
		t.Errorf("mutating a returned product changed the store: stock = %d", again.Stock)
	}
}

func TestApplyDeductionsAllOrNothing(t *testing.T) {
	store := New()
	ctx := context.Background()

	a := &models.Product{Name: "A", Price: decimal.NewFromInt(1), Stock: 5}
	b := &models.Product{Name: "B", Price: decimal.NewFromInt(1), Stock: 2}
	store.CreateProduct(ctx, a)
	store.CreateProduct(ctx, b)

	err := store.ApplyDeductions(ctx, []models.Deduction{
		{ProductID: a.ID, Quantity: 5},
		{ProductID: b.ID, Quantity: 3},
	})
	var ise *models.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}

	gotA, _ := store.GetProduct(ctx, a.ID)
	if gotA.Stock != 5 {
		t.Errorf("stock for A changed on failed deduction: %d", gotA.Stock)
	}

	// Repeated IDs are checked against their sum.
	err = store.ApplyDeductions(ctx, []models.Deduction{
		{ProductID: b.ID, Quantity: 1},
		{ProductID: b.ID, Quantity: 2},
	})
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError for summed deductions, got %v", err)
	}

	if err := store.ApplyDeductions(ctx, []models.Deduction{{ProductID: a.ID, Quantity: 5}, {ProductID: b.ID, Quantity: 2}}); err != nil {
		t.Fatalf("ApplyDeductions failed: %v", err)
	}
	gotA, _ = store.GetProduct(ctx, a.ID)
	gotB, _ := store.GetProduct(ctx, b.ID)
	if gotA.Stock != 0 || gotB.Stock != 0 {
		t.Errorf("expected both stocks at 0, got A=%d B=%d", gotA.Stock, gotB.Stock)
	}
}

func TestApplyDeductionsRejectsNonPositiveQuantity(t *testing.T) {
	store := New()
	ctx := context.Background()

	a := &models.Product{Name: "A", Price: decimal.NewFromInt(1), Stock: 10}
	store.CreateProduct(ctx, a)

	tests := []struct {
		name       string
		deductions []models.Deduction
	}{
		{"zero", []models.Deduction{{ProductID: a.ID, Quantity: 0}}},
		{"negative", []models.Deduction{{ProductID: a.ID, Quantity: -4}}},
		{"negative after positive", []models.Deduction{{ProductID: a.ID, Quantity: 2}, {ProductID: a.ID, Quantity: -2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.ApplyDeductions(ctx, tt.deductions)
			var ve *models.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			got, _ := store.GetProduct(ctx, a.ID)
			if got.Stock != 10 {
				t.Errorf("stock changed to %d", got.Stock)
			}
		})
	}
}

func TestApplyDeductionsOverflowingSum(t *testing.T) {
	store := New()
	ctx := context.Background()

	a := &models.Product{Name: "A", Price: decimal.NewFromInt(1), Stock: 10}
	store.CreateProduct(ctx, a)

	err := store.ApplyDeductions(ctx, []models.Deduction{
		{ProductID: a.ID, Quantity: 1},
		{ProductID: a.ID, Quantity: math.MaxInt},
	})
	var ise *models.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	got, _ := store.GetProduct(ctx, a.ID)
	if got.Stock != 10 {
		t.Errorf("stock changed to %d", got.Stock)
	}
}

func TestDeleteProduct(t *testing.T) {
	store := NewSeeded()
	ctx := context.Background()

	products, _ := store.ListProducts(ctx)
	if err := store.DeleteProduct(ctx, products[1].ID); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}

	remaining, _ := store.ListProducts(ctx)
	if len(remaining) != 3 {
		t.Fatalf("expected 3 products after delete, got %d", len(remaining))
	}
	for _, p := range remaining {
		if p.ID == products[1].ID {
			t.Error("deleted product still listed")
		}
	}

	var nf *models.NotFoundError
	if err := store.DeleteProduct(ctx, products[1].ID); !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError on second delete, got %v", err)
	}
}
