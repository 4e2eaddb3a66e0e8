package storage

import (
	"math"

	"github.com/mmynk/clinicledger/internal/models"
)

// SumDeductions totals deductions per product in first-seen order.
// Every quantity must be at least 1. Totals saturate at math.MaxInt, which no
// stock level can satisfy.
func SumDeductions(deductions []models.Deduction) ([]string, map[string]int, error) {
	totals := make(map[string]int, len(deductions))
	var order []string
	for _, d := range deductions {
		if d.Quantity < 1 {
			return nil, nil, models.NewValidationError("quantity", "deduction must be at least 1")
		}
		sum, seen := totals[d.ProductID]
		if !seen {
			order = append(order, d.ProductID)
		}
		if sum > math.MaxInt-d.Quantity {
			totals[d.ProductID] = math.MaxInt
		} else {
			totals[d.ProductID] = sum + d.Quantity
		}
	}
	return order, totals, nil
}
