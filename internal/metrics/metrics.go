// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Metrics groups the ledger's collectors.
type Metrics struct {
	RPCRequests      *prometheus.CounterVec
	RPCDuration      *prometheus.HistogramVec
	BillsCommitted   prometheus.Counter
	BilledAmount     prometheus.Counter
	UnitsDispensed   prometheus.Counter
	LowStockProducts prometheus.Gauge
	OpenSessions     prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicledger",
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicledger",
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		BillsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicledger",
			Name:      "bills_committed_total",
			Help:      "Bills committed.",
		}),
		BilledAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicledger",
			Name:      "billed_amount_total",
			Help:      "Sum of committed bill grand totals.",
		}),
		UnitsDispensed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicledger",
			Name:      "units_dispensed_total",
			Help:      "Stock units deducted by committed bills.",
		}),
		LowStockProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clinicledger",
			Name:      "low_stock_products",
			Help:      "Products below the low-stock threshold.",
		}),
		OpenSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clinicledger",
			Name:      "open_billing_sessions",
			Help:      "Billing sessions currently open.",
		}),
	}
	reg.MustRegister(
		m.RPCRequests,
		m.RPCDuration,
		m.BillsCommitted,
		m.BilledAmount,
		m.UnitsDispensed,
		m.LowStockProducts,
		m.OpenSessions,
	)
	return m
}

// ObserveBill records a committed bill.
func (m *Metrics) ObserveBill(total decimal.Decimal, units int) {
	m.BillsCommitted.Inc()
	m.BilledAmount.Add(total.InexactFloat64())
	m.UnitsDispensed.Add(float64(units))
}
