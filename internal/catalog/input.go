package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/clinicledger/internal/models"
)

const expiryLayout = "2006-01-02"

// Validate checks a ProductInput before it becomes a Product.
func Validate(in models.ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return models.NewValidationError("name", "required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return models.NewValidationError("category", "required")
	}
	if in.Price.IsNegative() {
		return models.NewValidationError("price", "must not be negative")
	}
	if in.Stock < 0 {
		return models.NewValidationError("stock", "must not be negative")
	}
	if in.ExpiryDate != "" {
		if _, err := time.Parse(expiryLayout, in.ExpiryDate); err != nil {
			return models.NewValidationError("expiry_date", "must be YYYY-MM-DD")
		}
	}
	return nil
}

// ParseProductForm converts text form fields into a ProductInput.
// Price and stock arrive as strings and must parse as a decimal and an integer.
func ParseProductForm(form map[string]string) (models.ProductInput, error) {
	in := models.ProductInput{
		Name:         strings.TrimSpace(form["name"]),
		Category:     strings.TrimSpace(form["category"]),
		ExpiryDate:   strings.TrimSpace(form["expiry_date"]),
		Manufacturer: strings.TrimSpace(form["manufacturer"]),
		BatchNumber:  strings.TrimSpace(form["batch_number"]),
	}

	rawPrice := strings.TrimSpace(form["price"])
	if rawPrice == "" {
		return in, models.NewValidationError("price", "required")
	}
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return in, models.NewValidationError("price", "not a number")
	}
	in.Price = price

	rawStock := strings.TrimSpace(form["stock"])
	if rawStock == "" {
		return in, models.NewValidationError("stock", "required")
	}
	stock, err := strconv.Atoi(rawStock)
	if err != nil {
		return in, models.NewValidationError("stock", "not a whole number")
	}
	in.Stock = stock

	return in, Validate(in)
}
