package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/clinicledger/internal/models"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name string
		line Line
		want string
	}{
		{name: "whole price", line: Line{UnitPrice: decimal.NewFromInt(25), Quantity: 2}, want: "50"},
		{name: "fractional price", line: Line{UnitPrice: decimal.RequireFromString("12.35"), Quantity: 3}, want: "37.05"},
		{name: "zero quantity", line: Line{UnitPrice: decimal.NewFromInt(99), Quantity: 0}, want: "0"},
		{name: "free item", line: Line{UnitPrice: decimal.Zero, Quantity: 7}, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(tt.line)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("LineTotal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGrandTotal(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		want  string
	}{
		{name: "empty bill", lines: nil, want: "0"},
		{
			name:  "single line",
			lines: []Line{{UnitPrice: decimal.NewFromInt(25), Quantity: 2}},
			want:  "50",
		},
		{
			name: "mixed lines",
			lines: []Line{
				{UnitPrice: decimal.NewFromInt(25), Quantity: 4},
				{UnitPrice: decimal.NewFromInt(850), Quantity: 1},
				{UnitPrice: decimal.RequireFromString("0.10"), Quantity: 3},
			},
			want: "950.30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrandTotal(tt.lines)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("GrandTotal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTotalStockValue(t *testing.T) {
	products := []models.Product{
		{ID: "a", Price: decimal.NewFromInt(10), Stock: 5},
		{ID: "b", Price: decimal.NewFromInt(20), Stock: 3},
	}

	got := TotalStockValue(products)
	if !got.Equal(decimal.NewFromInt(110)) {
		t.Errorf("TotalStockValue() = %s, want 110", got)
	}

	if v := TotalStockValue(nil); !v.IsZero() {
		t.Errorf("TotalStockValue(nil) = %s, want 0", v)
	}
}

func TestCountBelow(t *testing.T) {
	products := []models.Product{
		{ID: "a", Stock: 500},
		{ID: "b", Stock: 100},
		{ID: "c", Stock: 99},
		{ID: "d", Stock: 0},
	}

	if got := CountBelow(products, 100); got != 2 {
		t.Errorf("CountBelow(100) = %d, want 2", got)
	}
	if got := CountBelow(products, 0); got != 0 {
		t.Errorf("CountBelow(0) = %d, want 0", got)
	}
}
