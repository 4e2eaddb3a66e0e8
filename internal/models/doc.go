// Package models defines the core domain models for the clinic ledger.
//
// # Models
//
//   - Product: A pharmacy catalog entry with price and stock level
//   - Patient: Read-only reference data from the patient directory
//   - LineItem: One product and quantity on a draft or committed bill
//   - CommittedBill: The immutable record produced when a draft bill is committed
//
// # Errors
//
// Operations fail with one of four typed errors so callers can react with
// errors.As instead of matching on message text:
//   - ValidationError: malformed or missing input
//   - NotFoundError: unknown product or patient ID
//   - InsufficientStockError: requested quantity exceeds stock
//   - IncompleteBillError: commit without a patient or without lines
//
// # Design Principles
//
//  1. Money is decimal.Decimal, never float64
//  2. Relationships use ID strings instead of pointers
//  3. Committed bills snapshot prices so later catalog edits do not rewrite history
package models
