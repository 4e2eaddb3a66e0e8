package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/clinicledger/internal/catalog"
	"github.com/mmynk/clinicledger/internal/config"
	"github.com/mmynk/clinicledger/internal/metrics"
	"github.com/mmynk/clinicledger/internal/middleware"
	"github.com/mmynk/clinicledger/internal/notify"
	"github.com/mmynk/clinicledger/internal/service"
	"github.com/mmynk/clinicledger/internal/storage"
	"github.com/mmynk/clinicledger/internal/storage/memory"
	"github.com/mmynk/clinicledger/internal/storage/sqlite"
	"github.com/mmynk/clinicledger/pkg/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var notifier notify.Notifier = notify.Discard
	var async *notify.AsyncNotifier
	if cfg.NotifyEnabled {
		async = notify.Async(&notify.WhatsAppNotifier{
			OnLink: func(link string) {
				slog.Info("Bill ready to share", "whatsapp_link", link)
			},
		})
		notifier = async
	}

	cat := catalog.New(store, catalog.WithLowStockThreshold(cfg.LowStockThreshold))
	billingSvc := service.NewBillingService(cat, service.BillingOptions{
		Format: notify.FormatOptions{
			Title:    cfg.ClinicName,
			Currency: cfg.CurrencySymbol,
		},
		Notifier: notifier,
		Metrics:  m,
	})
	defer billingSvc.Close()

	interceptors := connect.WithInterceptors(
		middleware.OperatorInterceptor(),
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
	)

	mux := http.NewServeMux()
	mux.Handle(service.NewCatalogServiceHandler(service.NewCatalogService(cat, m), interceptors))
	mux.Handle(service.NewPatientServiceHandler(service.NewPatientService(store), interceptors))
	mux.Handle(service.NewBillingServiceHandler(billingSvc, interceptors))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	// Add logging and CORS middleware
	loggedHandler := loggingMiddleware(corsMiddleware(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect gRPC clients)
	h2cHandler := h2c.NewHandler(loggedHandler, &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           h2cHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Connect server starting",
			"address", addr,
			"url", fmt.Sprintf("http://localhost%s", addr),
			"store", cfg.StoreDriver,
			"low_stock_threshold", cfg.LowStockThreshold,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	if async != nil {
		async.Wait()
	}
}

// openStore builds the configured store and loads the demo data into an empty one.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		slog.Info("Storage initialized", "driver", cfg.StoreDriver)
		return memory.NewSeeded(), nil
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		seeded, err := store.SeedIfEmpty(context.Background())
		if err != nil {
			store.Close()
			return nil, err
		}
		slog.Info("Storage initialized", "driver", cfg.StoreDriver, "database", cfg.DBPath, "seeded", seeded)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms, "+middleware.OperatorHeader)
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
