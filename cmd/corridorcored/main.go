// Command corridorcored serves the corridor dashboard API: widget evaluation,
// layer management, and validation report exports.
package main

import (
	"context"
	"errors"
	"expvar"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"corridorcore/internal/adapters/dashboard"
	"corridorcore/internal/blob"
	"corridorcore/internal/core"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	shutdownTimeout := flag.Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	flag.Parse()

	if err := run(*addr, *shutdownTimeout); err != nil {
		log.Fatalf("corridorcored: %v", err)
	}
}

func run(addr string, shutdownTimeout time.Duration) error {
	engine := core.NewDefaultRulesEngine()
	store, err := core.OpenPersistentStore(engine)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Printf("close store: %v", err)
			}
		}()
	}

	metrics := core.NewPrometheusMetricsRecorder("corridorcore")
	service := core.NewService(store, core.WithMetricsRecorder(metrics))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobStore, err := blob.Open(ctx)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	worker := dashboard.NewWorker(service, blobStore, nil)
	worker.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := worker.Stop(stopCtx); err != nil {
			log.Printf("stop report worker: %v", err)
		}
	}()

	handler := dashboard.NewHandler(service)
	handler.Reports = worker

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", handler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (storage driver %q, blob driver %q)",
			addr, os.Getenv("CORRIDORCORE_STORAGE_DRIVER"), blobStore.Driver())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
