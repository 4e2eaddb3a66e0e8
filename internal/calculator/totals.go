// Package calculator holds the ledger's money arithmetic.
// Every function is pure; callers own the data.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/clinicledger/internal/models"
)

// Line is the minimal view of a bill line needed for totals.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal returns unit price × quantity.
func LineTotal(line Line) decimal.Decimal {
	return line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// GrandTotal sums the line totals of a bill.
// An empty bill totals zero.
func GrandTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineTotal(line))
	}
	return total
}

// TotalStockValue computes Σ price × stock across the catalog.
func TotalStockValue(products []models.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return total
}

// CountBelow returns how many products have stock strictly below threshold.
func CountBelow(products []models.Product, threshold int) int {
	n := 0
	for _, p := range products {
		if p.Stock < threshold {
			n++
		}
	}
	return n
}
