package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/clarity/internal/assistant"
	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/config"
	"github.com/mmynk/clarity/internal/ledger"
	"github.com/mmynk/clarity/internal/metrics"
	"github.com/mmynk/clarity/internal/public"
	"github.com/mmynk/clarity/internal/receipts"
	"github.com/mmynk/clarity/internal/report"
	"github.com/mmynk/clarity/internal/service"
	"github.com/mmynk/clarity/internal/tenant"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Connect RPC server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	blobs, closeBlobs, err := openBlobStore(ctx, cfg.Receipts)
	if err != nil {
		return err
	}
	defer closeBlobs()

	uploader := receipts.NewUploader(blobs, store, m, cfg.Receipts.UploadTimeout)
	// Closed before the store: in-flight uploads still record their outcome.
	defer uploader.Close()

	tenants := tenant.NewDirectory(store)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	budgets := ledger.NewBudgets(store)
	surface := public.NewSurface(store, tenants)
	workflow := ledger.NewWorkflow(store,
		ledger.WithReceipts(uploader),
		ledger.WithMetrics(m),
		ledger.WithSelfReview(cfg.Workflow.AllowSelfReview),
	)

	mux := http.NewServeMux()
	service.Mount(mux, service.Handlers{
		Auth:    service.NewAuthService(auth.NewPasswordAuthenticator(store, tenants), jwtManager, tenants, slog.Default()),
		Budget:  service.NewBudgetService(budgets),
		Expense: service.NewExpenseService(workflow),
		Payment: service.NewPaymentService(ledger.NewPayments(store)),
		Public:  service.NewPublicService(surface),
		Insight: service.NewInsightService(
			assistant.NewClient(cfg.Assistant.URL, cfg.Assistant.Timeout, surface),
			report.NewStatements(budgets, tenants),
		),
	}, jwtManager, store, m)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
		return err
	}
	return nil
}

// openBlobStore picks Google Cloud Storage when a bucket is configured and
// the local filesystem otherwise.
func openBlobStore(ctx context.Context, cfg config.ReceiptsConfig) (receipts.BlobStore, func(), error) {
	if cfg.Bucket != "" {
		gcs, err := receipts.NewGCSStore(ctx, cfg.Bucket)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Receipts stored in bucket", "bucket", cfg.Bucket)
		return gcs, func() {
			if err := gcs.Close(); err != nil {
				slog.Warn("Failed to close storage client", "error", err)
			}
		}, nil
	}

	local, err := receipts.NewLocalStore(cfg.Dir)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Receipts stored on disk", "dir", cfg.Dir)
	return local, func() {}, nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
