package service

import (
	"github.com/mmynk/clinicledger/internal/billing"
	"github.com/mmynk/clinicledger/internal/catalog"
	"github.com/mmynk/clinicledger/internal/models"
	"github.com/mmynk/clinicledger/internal/notify"
)

// Procedure names.
const (
	CatalogServiceName = "clinic.v1.CatalogService"
	PatientServiceName = "clinic.v1.PatientService"
	BillingServiceName = "clinic.v1.BillingService"

	AddProductProcedure     = "/" + CatalogServiceName + "/AddProduct"
	UpdateProductProcedure  = "/" + CatalogServiceName + "/UpdateProduct"
	DeleteProductProcedure  = "/" + CatalogServiceName + "/DeleteProduct"
	GetProductProcedure     = "/" + CatalogServiceName + "/GetProduct"
	ListProductsProcedure   = "/" + CatalogServiceName + "/ListProducts"
	SearchProductsProcedure = "/" + CatalogServiceName + "/SearchProducts"
	GetSummaryProcedure     = "/" + CatalogServiceName + "/GetSummary"

	ListPatientsProcedure       = "/" + PatientServiceName + "/ListPatients"
	GetPatientProcedure         = "/" + PatientServiceName + "/GetPatient"
	FindPatientByPhoneProcedure = "/" + PatientServiceName + "/FindPatientByPhone"

	StartSessionProcedure  = "/" + BillingServiceName + "/StartSession"
	SelectPatientProcedure = "/" + BillingServiceName + "/SelectPatient"
	AddLineProcedure       = "/" + BillingServiceName + "/AddLine"
	RemoveLineProcedure    = "/" + BillingServiceName + "/RemoveLine"
	GetDraftProcedure      = "/" + BillingServiceName + "/GetDraft"
	CommitProcedure        = "/" + BillingServiceName + "/Commit"
	CancelProcedure        = "/" + BillingServiceName + "/Cancel"
	EndSessionProcedure    = "/" + BillingServiceName + "/EndSession"
)

// ProductView is a product annotated for display.
type ProductView struct {
	models.Product
	LowStock bool `json:"low_stock"`
}

type AddProductRequest struct {
	Product models.ProductInput `json:"product"`
}

type UpdateProductRequest struct {
	ID      string              `json:"id"`
	Product models.ProductInput `json:"product"`
}

type DeleteProductRequest struct {
	ID string `json:"id"`
}

type DeleteProductResponse struct{}

type GetProductRequest struct {
	ID string `json:"id"`
}

type ProductResponse struct {
	Product ProductView `json:"product"`
}

type ListProductsRequest struct {
	LowStockOnly bool `json:"low_stock_only"`
}

type SearchProductsRequest struct {
	Term string `json:"term"`
}

type ListProductsResponse struct {
	Products []ProductView `json:"products"`
}

type GetSummaryRequest struct{}

type SummaryResponse struct {
	Summary catalog.Summary `json:"summary"`
}

type ListPatientsRequest struct{}

type ListPatientsResponse struct {
	Patients []models.Patient `json:"patients"`
}

type GetPatientRequest struct {
	ID string `json:"id"`
}

type FindPatientByPhoneRequest struct {
	Phone string `json:"phone"`
}

type PatientResponse struct {
	Patient models.Patient `json:"patient"`
}

type StartSessionRequest struct{}

type SelectPatientRequest struct {
	SessionID string `json:"session_id"`
	PatientID string `json:"patient_id"`
}

type AddLineRequest struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type RemoveLineRequest struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
}

// SessionRequest addresses a session without further arguments
// (GetDraft, Cancel, Commit, EndSession).
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

type SessionResponse struct {
	SessionID string        `json:"session_id"`
	Draft     billing.Draft `json:"draft"`
}

type CommitResponse struct {
	Bill         *models.CommittedBill `json:"bill"`
	Message      notify.Message        `json:"message"`
	WhatsAppLink string                `json:"whatsapp_link"`
}

type EndSessionResponse struct{}
