package storage

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/mmynk/clinicledger/internal/models"
)

// SeedProducts returns the demo pharmacy catalog. IDs are left empty for the
// store to assign.
func SeedProducts() []models.Product {
	return []models.Product{
		{
			Name:         "Paracetamol 500mg",
			Category:     "Pain Relief",
			Price:        decimal.NewFromInt(25),
			Stock:        500,
			ExpiryDate:   "2026-12-31",
			Manufacturer: "PharmaCorp",
			BatchNumber:  "PC2024001",
		},
		{
			Name:         "Amoxicillin 250mg",
			Category:     "Antibiotic",
			Price:        decimal.NewFromInt(120),
			Stock:        200,
			ExpiryDate:   "2025-06-30",
			Manufacturer: "MedLife",
			BatchNumber:  "ML2024002",
		},
		{
			Name:         "Insulin Glargine",
			Category:     "Diabetes",
			Price:        decimal.NewFromInt(850),
			Stock:        50,
			ExpiryDate:   "2025-12-31",
			Manufacturer: "DiabeCare",
			BatchNumber:  "DC2024003",
		},
		{
			Name:         "Amlodipine 5mg",
			Category:     "Blood Pressure",
			Price:        decimal.NewFromInt(45),
			Stock:        300,
			ExpiryDate:   "2026-03-15",
			Manufacturer: "CardioHealth",
			BatchNumber:  "CH2024004",
		},
	}
}

// SeedPatients returns the demo patient directory.
func SeedPatients() []models.Patient {
	return []models.Patient{
		{ID: "1", Name: "Rajesh Kumar", Phone: "+91 9940025603"},
		{ID: "2", Name: "Priya", Phone: "+91 9876543211"},
		{ID: "3", Name: "Amit Singh", Phone: "+91 9876543212"},
		{ID: "4", Name: "Roopan Vishnu", Phone: "+91 9677055602"},
	}
}

// PhoneDigits strips everything but digits from a phone number so
// "+91 98765-43211" and "919876543211" compare equal.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
