package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Patient is the billing view of a clinic patient.
// Owned by the patient directory; the ledger only reads it.
type Patient struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// LineItem represents one product on a bill.
// UnitPrice is a snapshot taken when the product was first added to the draft.
type LineItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// CommittedBill is the immutable record of a successful commit.
// It is handed to the notifier and returned to the caller.
type CommittedBill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string `json:"id"`

	Patient Patient    `json:"patient"`
	Items   []LineItem `json:"items"`

	// GrandTotal is the sum of all line totals.
	GrandTotal decimal.Decimal `json:"grand_total"`

	CreatedAt time.Time `json:"created_at"`
}
