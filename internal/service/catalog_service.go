package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/clinicledger/internal/catalog"
	"github.com/mmynk/clinicledger/internal/metrics"
	"github.com/mmynk/clinicledger/internal/models"
)

// CatalogService implements the Connect CatalogService
type CatalogService struct {
	catalog *catalog.Catalog
	metrics *metrics.Metrics
}

// NewCatalogService creates a CatalogService over cat. m may be nil.
func NewCatalogService(cat *catalog.Catalog, m *metrics.Metrics) *CatalogService {
	return &CatalogService{catalog: cat, metrics: m}
}

// NewCatalogServiceHandler builds an HTTP handler serving every CatalogService procedure.
func NewCatalogServiceHandler(svc *CatalogService, opts ...connect.HandlerOption) (string, http.Handler) {
	m := newServiceMux(opts)
	handle(m, AddProductProcedure, svc.AddProduct)
	handle(m, UpdateProductProcedure, svc.UpdateProduct)
	handle(m, DeleteProductProcedure, svc.DeleteProduct)
	handle(m, GetProductProcedure, svc.GetProduct)
	handle(m, ListProductsProcedure, svc.ListProducts)
	handle(m, SearchProductsProcedure, svc.SearchProducts)
	handle(m, GetSummaryProcedure, svc.GetSummary)
	return "/" + CatalogServiceName + "/", m.mux
}

// AddProduct validates and stores a new product
func (s *CatalogService) AddProduct(ctx context.Context, req *connect.Request[AddProductRequest]) (*connect.Response[ProductResponse], error) {
	product, err := s.catalog.AddProduct(ctx, req.Msg.Product)
	if err != nil {
		slog.Error("AddProduct failed", "name", req.Msg.Product.Name, "error", err)
		return nil, toConnectError(err)
	}
	s.refreshLowStock(ctx)
	return connect.NewResponse(&ProductResponse{Product: s.view(*product)}), nil
}

// UpdateProduct replaces every editable field of an existing product
func (s *CatalogService) UpdateProduct(ctx context.Context, req *connect.Request[UpdateProductRequest]) (*connect.Response[ProductResponse], error) {
	if req.Msg.ID == "" {
		return nil, toConnectError(models.NewValidationError("id", "is required"))
	}
	product, err := s.catalog.UpdateProduct(ctx, req.Msg.ID, req.Msg.Product)
	if err != nil {
		slog.Error("UpdateProduct failed", "product_id", req.Msg.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.refreshLowStock(ctx)
	return connect.NewResponse(&ProductResponse{Product: s.view(*product)}), nil
}

// DeleteProduct removes a product and drops it from open drafts
func (s *CatalogService) DeleteProduct(ctx context.Context, req *connect.Request[DeleteProductRequest]) (*connect.Response[DeleteProductResponse], error) {
	if err := s.catalog.DeleteProduct(ctx, req.Msg.ID); err != nil {
		slog.Error("DeleteProduct failed", "product_id", req.Msg.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.refreshLowStock(ctx)
	return connect.NewResponse(&DeleteProductResponse{}), nil
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, req *connect.Request[GetProductRequest]) (*connect.Response[ProductResponse], error) {
	product, err := s.catalog.GetProduct(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ProductResponse{Product: s.view(*product)}), nil
}

// ListProducts returns the catalog in insertion order, optionally only low-stock items
func (s *CatalogService) ListProducts(ctx context.Context, req *connect.Request[ListProductsRequest]) (*connect.Response[ListProductsResponse], error) {
	var (
		products []models.Product
		err      error
	)
	if req.Msg.LowStockOnly {
		products, err = s.catalog.LowStock(ctx)
	} else {
		products, err = s.catalog.ListProducts(ctx)
	}
	if err != nil {
		slog.Error("ListProducts failed", "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListProductsResponse{Products: s.views(products)}), nil
}

// SearchProducts filters the catalog by name, category or manufacturer
func (s *CatalogService) SearchProducts(ctx context.Context, req *connect.Request[SearchProductsRequest]) (*connect.Response[ListProductsResponse], error) {
	products, err := s.catalog.Search(ctx, req.Msg.Term)
	if err != nil {
		slog.Error("SearchProducts failed", "term", req.Msg.Term, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListProductsResponse{Products: s.views(products)}), nil
}

// GetSummary returns the inventory dashboard figures
func (s *CatalogService) GetSummary(ctx context.Context, req *connect.Request[GetSummaryRequest]) (*connect.Response[SummaryResponse], error) {
	summary, err := s.catalog.Summary(ctx)
	if err != nil {
		slog.Error("GetSummary failed", "error", err)
		return nil, toConnectError(err)
	}
	if s.metrics != nil {
		s.metrics.LowStockProducts.Set(float64(summary.LowStockCount))
	}
	return connect.NewResponse(&SummaryResponse{Summary: *summary}), nil
}

func (s *CatalogService) view(p models.Product) ProductView {
	return ProductView{Product: p, LowStock: s.catalog.IsLowStock(p)}
}

func (s *CatalogService) views(products []models.Product) []ProductView {
	out := make([]ProductView, len(products))
	for i, p := range products {
		out[i] = s.view(p)
	}
	return out
}

func (s *CatalogService) refreshLowStock(ctx context.Context) {
	refreshLowStock(ctx, s.catalog, s.metrics)
}

func refreshLowStock(ctx context.Context, cat *catalog.Catalog, m *metrics.Metrics) {
	if m == nil {
		return
	}
	summary, err := cat.Summary(ctx)
	if err != nil {
		slog.Warn("Failed to refresh low-stock gauge", "error", err)
		return
	}
	m.LowStockProducts.Set(float64(summary.LowStockCount))
}
