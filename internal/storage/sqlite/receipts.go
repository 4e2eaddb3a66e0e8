package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/clinicledger/internal/models"
)

// RecordBill appends a committed bill to the receipt log.
func (s *SQLiteStore) RecordBill(ctx context.Context, bill *models.CommittedBill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bill_receipts (id, patient_id, patient_name, patient_phone, grand_total, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Patient.ID, bill.Patient.Name, bill.Patient.Phone,
		bill.GrandTotal.String(), bill.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	for i, item := range bill.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO bill_receipt_items (bill_id, position, product_id, product_name, quantity, unit_price, line_total)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			bill.ID, i, item.ProductID, item.ProductName, item.Quantity,
			item.UnitPrice.String(), item.Total.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert receipt item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBill reads a recorded bill back from the receipt log.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.CommittedBill, error) {
	var (
		bill      models.CommittedBill
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, patient_id, patient_name, patient_phone, grand_total, created_at
		 FROM bill_receipts WHERE id = ?`,
		billID,
	).Scan(&bill.ID, &bill.Patient.ID, &bill.Patient.Name, &bill.Patient.Phone, &bill.GrandTotal, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{Kind: "bill", ID: billID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	bill.CreatedAt = time.Unix(createdAt, 0)

	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, product_name, quantity, unit_price, line_total
		 FROM bill_receipt_items WHERE bill_id = ? ORDER BY position`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.Total); err != nil {
			return nil, fmt.Errorf("failed to scan receipt item: %w", err)
		}
		bill.Items = append(bill.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipt items: %w", err)
	}
	return &bill, nil
}
