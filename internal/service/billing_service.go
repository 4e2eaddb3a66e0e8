package service

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/clinicledger/internal/billing"
	"github.com/mmynk/clinicledger/internal/catalog"
	"github.com/mmynk/clinicledger/internal/metrics"
	"github.com/mmynk/clinicledger/internal/models"
	"github.com/mmynk/clinicledger/internal/notify"
	"github.com/mmynk/clinicledger/internal/storage"
)

// BillingOptions configures a BillingService.
type BillingOptions struct {
	Format   notify.FormatOptions
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
}

type openSession struct {
	mu      sync.Mutex
	session *billing.Session
}

// BillingService implements the Connect BillingService.
// It keeps one billing.Session per counter and serializes calls on each.
type BillingService struct {
	catalog *catalog.Catalog
	metrics *metrics.Metrics
	opts    []billing.Option

	mu       sync.Mutex
	sessions map[string]*openSession
}

// NewBillingService creates a BillingService and subscribes it to product deletions.
// Committed bills are recorded when the catalog store implements storage.BillRecorder.
func NewBillingService(cat *catalog.Catalog, o BillingOptions) *BillingService {
	opts := []billing.Option{billing.WithFormat(o.Format)}
	if o.Notifier != nil {
		opts = append(opts, billing.WithNotifier(o.Notifier))
	}
	if rec, ok := cat.Store().(storage.BillRecorder); ok {
		opts = append(opts, billing.WithRecorder(rec))
	}

	s := &BillingService{
		catalog:  cat,
		metrics:  o.Metrics,
		opts:     opts,
		sessions: make(map[string]*openSession),
	}
	cat.Subscribe(s)
	return s
}

// Close ends every open session and unsubscribes from the catalog.
func (s *BillingService) Close() {
	s.catalog.Unsubscribe(s)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*openSession)
	if s.metrics != nil {
		s.metrics.OpenSessions.Set(0)
	}
}

// NewBillingServiceHandler builds an HTTP handler serving every BillingService procedure.
func NewBillingServiceHandler(svc *BillingService, opts ...connect.HandlerOption) (string, http.Handler) {
	m := newServiceMux(opts)
	handle(m, StartSessionProcedure, svc.StartSession)
	handle(m, SelectPatientProcedure, svc.SelectPatient)
	handle(m, AddLineProcedure, svc.AddLine)
	handle(m, RemoveLineProcedure, svc.RemoveLine)
	handle(m, GetDraftProcedure, svc.GetDraft)
	handle(m, CommitProcedure, svc.Commit)
	handle(m, CancelProcedure, svc.Cancel)
	handle(m, EndSessionProcedure, svc.EndSession)
	return "/" + BillingServiceName + "/", m.mux
}

// ProductDeleted drops the product from every open draft.
func (s *BillingService) ProductDeleted(productID string) {
	s.mu.Lock()
	open := make([]*openSession, 0, len(s.sessions))
	for _, entry := range s.sessions {
		open = append(open, entry)
	}
	s.mu.Unlock()

	for _, entry := range open {
		entry.mu.Lock()
		entry.session.ProductDeleted(productID)
		entry.mu.Unlock()
	}
}

// StartSession opens an empty draft bill
func (s *BillingService) StartSession(ctx context.Context, req *connect.Request[StartSessionRequest]) (*connect.Response[SessionResponse], error) {
	session := billing.NewSession(s.catalog.Store(), s.opts...)

	s.mu.Lock()
	s.sessions[session.ID] = &openSession{session: session}
	count := len(s.sessions)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.OpenSessions.Set(float64(count))
	}
	slog.Info("Billing session started", "session_id", session.ID, "open_sessions", count)
	return connect.NewResponse(&SessionResponse{SessionID: session.ID, Draft: session.Draft()}), nil
}

// SelectPatient attaches a directory patient to the draft
func (s *BillingService) SelectPatient(ctx context.Context, req *connect.Request[SelectPatientRequest]) (*connect.Response[SessionResponse], error) {
	if req.Msg.PatientID == "" {
		return nil, toConnectError(models.NewValidationError("patient_id", "is required"))
	}
	patient, err := s.catalog.Store().GetPatient(ctx, req.Msg.PatientID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return s.update(req.Msg.SessionID, func(session *billing.Session) error {
		return session.SelectPatient(*patient)
	})
}

// AddLine adds units of a product to the draft
func (s *BillingService) AddLine(ctx context.Context, req *connect.Request[AddLineRequest]) (*connect.Response[SessionResponse], error) {
	return s.update(req.Msg.SessionID, func(session *billing.Session) error {
		return session.AddLine(ctx, req.Msg.ProductID, req.Msg.Quantity)
	})
}

// RemoveLine drops a product from the draft
func (s *BillingService) RemoveLine(ctx context.Context, req *connect.Request[RemoveLineRequest]) (*connect.Response[SessionResponse], error) {
	return s.update(req.Msg.SessionID, func(session *billing.Session) error {
		session.RemoveLine(req.Msg.ProductID)
		return nil
	})
}

// GetDraft returns the current draft
func (s *BillingService) GetDraft(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error) {
	return s.update(req.Msg.SessionID, func(*billing.Session) error { return nil })
}

// Cancel discards the draft and its patient, keeping the session open
func (s *BillingService) Cancel(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error) {
	return s.update(req.Msg.SessionID, func(session *billing.Session) error {
		session.Cancel()
		return nil
	})
}

// Commit deducts the draft from stock and returns the committed bill
func (s *BillingService) Commit(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[CommitResponse], error) {
	entry, err := s.lookup(req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}

	entry.mu.Lock()
	receipt, err := entry.session.Commit(ctx)
	entry.mu.Unlock()
	if err != nil {
		slog.Warn("Commit rejected", "session_id", req.Msg.SessionID, "error", err)
		return nil, toConnectError(err)
	}

	if s.metrics != nil {
		units := 0
		for _, item := range receipt.Items {
			units += item.Quantity
		}
		s.metrics.ObserveBill(receipt.GrandTotal, units)
	}
	refreshLowStock(ctx, s.catalog, s.metrics)

	return connect.NewResponse(&CommitResponse{
		Bill:         receipt.CommittedBill,
		Message:      receipt.Message,
		WhatsAppLink: notify.WhatsAppLink(receipt.Message),
	}), nil
}

// EndSession closes the session and discards any draft
func (s *BillingService) EndSession(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[EndSessionResponse], error) {
	s.mu.Lock()
	_, ok := s.sessions[req.Msg.SessionID]
	delete(s.sessions, req.Msg.SessionID)
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return nil, toConnectError(&models.NotFoundError{Kind: "session", ID: req.Msg.SessionID})
	}
	if s.metrics != nil {
		s.metrics.OpenSessions.Set(float64(count))
	}
	slog.Info("Billing session ended", "session_id", req.Msg.SessionID)
	return connect.NewResponse(&EndSessionResponse{}), nil
}

func (s *BillingService) lookup(sessionID string) (*openSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, &models.NotFoundError{Kind: "session", ID: sessionID}
	}
	return entry, nil
}

// update runs fn against the session and returns the resulting draft.
func (s *BillingService) update(sessionID string, fn func(*billing.Session) error) (*connect.Response[SessionResponse], error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return nil, toConnectError(err)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := fn(entry.session); err != nil {
		slog.Debug("Billing operation rejected", "session_id", sessionID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SessionResponse{SessionID: sessionID, Draft: entry.session.Draft()}), nil
}
