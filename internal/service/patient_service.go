package service

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/clinicledger/internal/models"
	"github.com/mmynk/clinicledger/internal/storage"
)

// PatientService implements the Connect PatientService
type PatientService struct {
	store storage.Store
}

// NewPatientService creates a PatientService with the given storage backend.
func NewPatientService(store storage.Store) *PatientService {
	return &PatientService{store: store}
}

// NewPatientServiceHandler builds an HTTP handler serving every PatientService procedure.
func NewPatientServiceHandler(svc *PatientService, opts ...connect.HandlerOption) (string, http.Handler) {
	m := newServiceMux(opts)
	handle(m, ListPatientsProcedure, svc.ListPatients)
	handle(m, GetPatientProcedure, svc.GetPatient)
	handle(m, FindPatientByPhoneProcedure, svc.FindPatientByPhone)
	return "/" + PatientServiceName + "/", m.mux
}

// ListPatients returns the patient directory sorted by name
func (s *PatientService) ListPatients(ctx context.Context, req *connect.Request[ListPatientsRequest]) (*connect.Response[ListPatientsResponse], error) {
	patients, err := s.store.ListPatients(ctx)
	if err != nil {
		slog.Error("ListPatients failed", "error", err)
		return nil, toConnectError(err)
	}
	if patients == nil {
		patients = []models.Patient{}
	}
	slices.SortStableFunc(patients, func(a, b models.Patient) int {
		return strings.Compare(a.Name, b.Name)
	})
	return connect.NewResponse(&ListPatientsResponse{Patients: patients}), nil
}

// GetPatient retrieves a patient by ID
func (s *PatientService) GetPatient(ctx context.Context, req *connect.Request[GetPatientRequest]) (*connect.Response[PatientResponse], error) {
	patient, err := s.store.GetPatient(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PatientResponse{Patient: *patient}), nil
}

// FindPatientByPhone looks a patient up by phone number, ignoring formatting
func (s *PatientService) FindPatientByPhone(ctx context.Context, req *connect.Request[FindPatientByPhoneRequest]) (*connect.Response[PatientResponse], error) {
	if storage.PhoneDigits(req.Msg.Phone) == "" {
		return nil, toConnectError(models.NewValidationError("phone", "must contain digits"))
	}
	patient, err := s.store.FindPatientByPhone(ctx, req.Msg.Phone)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PatientResponse{Patient: *patient}), nil
}
