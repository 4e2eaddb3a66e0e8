// Package billing implements the draft bill for one patient and its commit
// against catalog stock.
//
// A Session moves through three states:
//
//	Empty --AddLine--> Building --Commit--> Committed --(reset)--> Empty
//	                   Building --Cancel--> Empty
//
// A Session is owned by a single actor and is not safe for concurrent use.
// Failed operations leave the session unchanged.
package billing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/clinicledger/internal/calculator"
	"github.com/mmynk/clinicledger/internal/models"
	"github.com/mmynk/clinicledger/internal/notify"
	"github.com/mmynk/clinicledger/internal/storage"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateEmpty State = iota
	StateBuilding
	StateCommitted
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilding:
		return "building"
	case StateCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

// Inventory is the slice of the catalog store a session needs.
type Inventory interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	ApplyDeductions(ctx context.Context, deductions []models.Deduction) error
}

// Line is one draft-bill entry: a product snapshot and the quantity requested.
type Line struct {
	Product  models.Product
	Quantity int
}

// LineTotal returns the snapshot price × quantity.
func LineTotal(l Line) decimal.Decimal {
	return calculator.LineTotal(calculator.Line{UnitPrice: l.Product.Price, Quantity: l.Quantity})
}

// Draft is a read-only view of the session's current bill.
type Draft struct {
	State      string            `json:"state"`
	Patient    *models.Patient   `json:"patient,omitempty"`
	Lines      []models.LineItem `json:"lines"`
	GrandTotal decimal.Decimal   `json:"grand_total"`
}

// Receipt is the outcome of a successful commit: the bill and the message
// handed to the notifier.
type Receipt struct {
	*models.CommittedBill
	Message notify.Message
}

// Session holds one draft bill.
type Session struct {
	ID string

	inventory Inventory
	notifier  notify.Notifier
	recorder  storage.BillRecorder
	format    notify.FormatOptions
	now       func() time.Time

	state   State
	patient *models.Patient
	lines   map[string]*Line
	order   []string
}

// Option configures a Session.
type Option func(*Session)

// WithNotifier sets the collaborator that receives committed bills.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithRecorder sets a receipt log that committed bills are written to.
func WithRecorder(r storage.BillRecorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithFormat sets the options used to render bill messages.
func WithFormat(opts notify.FormatOptions) Option {
	return func(s *Session) {
		s.format = opts
	}
}

// WithClock overrides time.Now for commit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession starts an empty billing session against inventory.
func NewSession(inventory Inventory, opts ...Option) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		inventory: inventory,
		notifier:  notify.Discard,
		now:       time.Now,
		lines:     make(map[string]*Line),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Patient returns the selected patient, or nil.
func (s *Session) Patient() *models.Patient {
	if s.patient == nil {
		return nil
	}
	p := *s.patient
	return &p
}

// Lines returns copies of the draft lines in insertion order.
func (s *Session) Lines() []Line {
	lines := make([]Line, 0, len(s.order))
	for _, id := range s.order {
		lines = append(lines, *s.lines[id])
	}
	return lines
}

// SelectPatient sets the patient the bill is for.
func (s *Session) SelectPatient(p models.Patient) error {
	if p.ID == "" {
		return models.NewValidationError("patient_id", "required")
	}
	s.patient = &p
	slog.Debug("Patient selected", "session_id", s.ID, "patient_id", p.ID)
	return nil
}

// AddLine adds quantity units of a product, merging with an existing line.
// Quantity must be at least 1 and the merged quantity must not exceed the
// product's current stock; both failures are an InsufficientStockError.
func (s *Session) AddLine(ctx context.Context, productID string, quantity int) error {
	product, err := s.inventory.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	held := 0
	existing, ok := s.lines[productID]
	if ok {
		held = existing.Quantity
	}
	// Compared against the remainder so a huge quantity cannot wrap the sum.
	if quantity < 1 || quantity > product.Stock-held {
		return &models.InsufficientStockError{
			ProductID: product.ID,
			Name:      product.Name,
			Requested: quantity,
			Available: product.Stock - held,
		}
	}

	if ok {
		existing.Quantity = held + quantity
	} else {
		s.lines[productID] = &Line{Product: *product, Quantity: quantity}
		s.order = append(s.order, productID)
	}
	s.state = StateBuilding

	slog.Debug("Line added", "session_id", s.ID, "product_id", productID, "quantity", held+quantity)
	return nil
}

// RemoveLine deletes the line for productID. Absent lines are ignored.
func (s *Session) RemoveLine(productID string) {
	if _, ok := s.lines[productID]; !ok {
		return
	}
	delete(s.lines, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if len(s.lines) == 0 {
		s.state = StateEmpty
	}
}

// ProductDeleted drops a line whose product left the catalog.
func (s *Session) ProductDeleted(productID string) {
	if _, ok := s.lines[productID]; ok {
		slog.Info("Dropping line for deleted product", "session_id", s.ID, "product_id", productID)
		s.RemoveLine(productID)
	}
}

// GrandTotal sums all line totals.
func (s *Session) GrandTotal() decimal.Decimal {
	return calculator.GrandTotal(s.calcLines())
}

// Draft returns a snapshot of the bill being built.
func (s *Session) Draft() Draft {
	return Draft{
		State:      s.state.String(),
		Patient:    s.Patient(),
		Lines:      s.lineItems(),
		GrandTotal: s.GrandTotal(),
	}
}

// Commit deducts every line from stock as one unit, produces the committed
// bill, resets the draft and hands the formatted bill to the notifier.
func (s *Session) Commit(ctx context.Context) (*Receipt, error) {
	if s.patient == nil {
		return nil, &models.IncompleteBillError{Reason: "no patient selected"}
	}
	if len(s.lines) == 0 {
		return nil, &models.IncompleteBillError{Reason: "no items on bill"}
	}

	deductions := make([]models.Deduction, 0, len(s.order))
	for _, id := range s.order {
		deductions = append(deductions, models.Deduction{ProductID: id, Quantity: s.lines[id].Quantity})
	}
	if err := s.inventory.ApplyDeductions(ctx, deductions); err != nil {
		return nil, err
	}

	bill := &models.CommittedBill{
		ID:         uuid.New().String(),
		Patient:    *s.patient,
		Items:      s.lineItems(),
		GrandTotal: s.GrandTotal(),
		CreatedAt:  s.now(),
	}
	s.state = StateCommitted
	slog.Info("Bill committed",
		"session_id", s.ID,
		"bill_id", bill.ID,
		"patient_id", bill.Patient.ID,
		"items_count", len(bill.Items),
		"grand_total", bill.GrandTotal.String(),
	)

	if s.recorder != nil {
		if err := s.recorder.RecordBill(ctx, bill); err != nil {
			// Stock is already deducted; losing the receipt must not undo the sale.
			slog.Error("Failed to record bill", "bill_id", bill.ID, "error", err)
		}
	}
	msg := notify.FormatBill(bill, s.format)
	if err := s.notifier.Notify(ctx, msg); err != nil {
		slog.Warn("Bill notification failed", "bill_id", bill.ID, "error", err)
	}

	s.reset()
	return &Receipt{CommittedBill: bill, Message: msg}, nil
}

// Cancel discards the draft and the selected patient.
func (s *Session) Cancel() {
	s.reset()
	slog.Debug("Session canceled", "session_id", s.ID)
}

func (s *Session) reset() {
	s.patient = nil
	s.lines = make(map[string]*Line)
	s.order = nil
	s.state = StateEmpty
}

func (s *Session) calcLines() []calculator.Line {
	lines := make([]calculator.Line, 0, len(s.order))
	for _, id := range s.order {
		l := s.lines[id]
		lines = append(lines, calculator.Line{UnitPrice: l.Product.Price, Quantity: l.Quantity})
	}
	return lines
}

func (s *Session) lineItems() []models.LineItem {
	items := make([]models.LineItem, 0, len(s.order))
	for _, id := range s.order {
		l := s.lines[id]
		items = append(items, models.LineItem{
			ProductID:   id,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.Product.Price,
			Total:       LineTotal(*l),
		})
	}
	return items
}
