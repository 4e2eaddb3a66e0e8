// Package service exposes the catalog, patient directory and billing sessions
// as Connect RPC services.
//
// Messages are plain Go structs carried by a JSON codec, so clients speak the
// Connect protocol with Content-Type application/json.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/clinicledger/internal/models"
)

// JSONCodec marshals plain structs with encoding/json under the "json" codec name.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal implements connect.Codec.
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// NewClient builds a unary client for one procedure using the JSON codec.
func NewClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts ...connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return connect.NewClient[Req, Res](httpClient, baseURL+procedure, opts...)
}

type serviceMux struct {
	mux  *http.ServeMux
	opts []connect.HandlerOption
}

func newServiceMux(opts []connect.HandlerOption) *serviceMux {
	return &serviceMux{
		mux:  http.NewServeMux(),
		opts: append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...),
	}
}

func handle[Req, Res any](m *serviceMux, procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error)) {
	m.mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, m.opts...))
}

// toConnectError maps the ledger's typed errors onto Connect codes.
func toConnectError(err error) error {
	var (
		validation *models.ValidationError
		notFound   *models.NotFoundError
		stock      *models.InsufficientStockError
		incomplete *models.IncompleteBillError
	)
	switch {
	case errors.As(err, &validation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.As(err, &notFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.As(err, &stock), errors.As(err, &incomplete):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
