package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/clinicledger/internal/metrics"
	"github.com/mmynk/clinicledger/internal/service"
)

type echoRequest struct {
	Fail  bool `json:"fail"`
	Crash bool `json:"crash"`
}

type echoResponse struct {
	Operator string `json:"operator"`
}

const echoProcedure = "/test.v1.EchoService/Echo"

func setupEcho(t *testing.T) (*connect.Client[echoRequest, echoResponse], *metrics.Metrics) {
	t.Helper()

	m := metrics.New(prometheus.NewRegistry())
	handler := connect.NewUnaryHandler(echoProcedure,
		func(ctx context.Context, req *connect.Request[echoRequest]) (*connect.Response[echoResponse], error) {
			if req.Msg.Crash {
				return nil, errors.New("store unavailable")
			}
			if req.Msg.Fail {
				return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("refused"))
			}
			return connect.NewResponse(&echoResponse{Operator: GetOperator(ctx)}), nil
		},
		connect.WithCodec(service.JSONCodec{}),
		connect.WithInterceptors(OperatorInterceptor(), LoggingInterceptor(), MetricsInterceptor(m)),
	)

	mux := http.NewServeMux()
	mux.Handle(echoProcedure, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return service.NewClient[echoRequest, echoResponse](http.DefaultClient, server.URL, echoProcedure), m
}

func TestOperatorInterceptor(t *testing.T) {
	client, _ := setupEcho(t)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"header set", "  front-desk  ", "front-desk"},
		{"header missing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := connect.NewRequest(&echoRequest{})
			if tt.header != "" {
				req.Header().Set(OperatorHeader, tt.header)
			}
			resp, err := client.CallUnary(context.Background(), req)
			if err != nil {
				t.Fatalf("Echo failed: %v", err)
			}
			if resp.Msg.Operator != tt.want {
				t.Errorf("operator = %q, want %q", resp.Msg.Operator, tt.want)
			}
		})
	}
}

func TestMetricsInterceptor(t *testing.T) {
	client, m := setupEcho(t)

	if _, err := client.CallUnary(context.Background(), connect.NewRequest(&echoRequest{})); err != nil {
		t.Fatalf("Echo failed: %v", err)
	}
	_, err := client.CallUnary(context.Background(), connect.NewRequest(&echoRequest{Fail: true}))
	if connect.CodeOf(err) != connect.CodeFailedPrecondition {
		t.Fatalf("expected failed_precondition, got %v", err)
	}

	if got := testutil.ToFloat64(m.RPCRequests.WithLabelValues(echoProcedure, "ok")); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RPCRequests.WithLabelValues(echoProcedure, "failed_precondition")); got != 1 {
		t.Errorf("failed_precondition count = %v, want 1", got)
	}
}

func TestGetOperator_Empty(t *testing.T) {
	if got := GetOperator(context.Background()); got != "" {
		t.Errorf("GetOperator() = %q, want empty", got)
	}
}

// captureLogs routes the default logger into a JSON buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var record map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &record); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}
	buf.Reset()
	return record
}

func TestLoggingInterceptor(t *testing.T) {
	client, _ := setupEcho(t)
	buf := captureLogs(t)

	tests := []struct {
		name         string
		msg          echoRequest
		operator     string
		wantLevel    string
		wantMsg      string
		wantOperator bool
	}{
		{"ok with operator", echoRequest{}, "front-desk", "INFO", "RPC ok", true},
		{"ok without operator", echoRequest{}, "", "INFO", "RPC ok", false},
		{"caller error", echoRequest{Fail: true}, "front-desk", "WARN", "RPC rejected", true},
		{"server error", echoRequest{Crash: true}, "", "ERROR", "RPC failed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := connect.NewRequest(&tt.msg)
			if tt.operator != "" {
				req.Header().Set(OperatorHeader, tt.operator)
			}
			client.CallUnary(context.Background(), req)

			record := lastRecord(t, buf)
			if record["level"] != tt.wantLevel || record["msg"] != tt.wantMsg {
				t.Errorf("got %v %q, want %s %q", record["level"], record["msg"], tt.wantLevel, tt.wantMsg)
			}
			if record["procedure"] != echoProcedure {
				t.Errorf("procedure = %v", record["procedure"])
			}
			operator, ok := record["operator"]
			if ok != tt.wantOperator {
				t.Errorf("operator attribute present = %v, want %v", ok, tt.wantOperator)
			}
			if ok && operator != tt.operator {
				t.Errorf("operator = %v, want %q", operator, tt.operator)
			}
		})
	}
}
