package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/clinicledger/internal/models"
	"github.com/mmynk/clinicledger/internal/storage"
)

// AddPatients inserts patients into the directory in a single transaction.
func (s *SQLiteStore) AddPatients(ctx context.Context, patients ...models.Patient) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range patients {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO patients (id, name, phone, phone_digits) VALUES (?, ?, ?, ?)",
			p.ID, p.Name, p.Phone, storage.PhoneDigits(p.Phone),
		)
		if err != nil {
			return fmt.Errorf("failed to insert patient: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPatient retrieves a patient by ID.
func (s *SQLiteStore) GetPatient(ctx context.Context, patientID string) (*models.Patient, error) {
	var p models.Patient
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, phone FROM patients WHERE id = ?",
		patientID,
	).Scan(&p.ID, &p.Name, &p.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{Kind: "patient", ID: patientID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &p, nil
}

// FindPatientByPhone retrieves a patient by the digits of their phone number.
func (s *SQLiteStore) FindPatientByPhone(ctx context.Context, phone string) (*models.Patient, error) {
	digits := storage.PhoneDigits(phone)
	if digits == "" {
		return nil, &models.NotFoundError{Kind: "patient", ID: phone}
	}

	var p models.Patient
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, phone FROM patients WHERE phone_digits = ? LIMIT 1",
		digits,
	).Scan(&p.ID, &p.Name, &p.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{Kind: "patient", ID: phone}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find patient: %w", err)
	}
	return &p, nil
}

// ListPatients returns the whole directory ordered by name.
func (s *SQLiteStore) ListPatients(ctx context.Context) ([]models.Patient, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, phone FROM patients ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []models.Patient
	for rows.Next() {
		var p models.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patients: %w", err)
	}
	return patients, nil
}
