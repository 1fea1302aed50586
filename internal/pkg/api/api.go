// Package api serves the metrics and status of a running search over HTTP.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/internetarchive/linzstac/internal/pkg/log"
	"github.com/internetarchive/linzstac/internal/pkg/stats"
)

var (
	server   *http.Server
	listener net.Listener
	once     sync.Once
	logger   = log.NewFieldedLogger(&log.Fields{"component": "api"})
	// ErrAPIAlreadyInitialized is returned when the API server is already initialized.
	ErrAPIAlreadyInitialized = errors.New("API server already initialized")
	// ErrAPINotStarted is returned when stopping a server that never started.
	ErrAPINotStarted = errors.New("API server not started")
)

// Options configures the API server.
type Options struct {
	// Addr is the listen address, such as ":9443".
	Addr string
	// Prometheus exposes /metrics.
	Prometheus bool
	// Snapshot returns the progress of the current search, it may be nil.
	Snapshot func() stats.Snapshot
}

// NewRouter returns the handler serving the API routes.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(recoverMiddleware)

	r.Get("/healthz", healthz)
	r.Get("/status", statusHandler(opts.Snapshot))
	if opts.Prometheus {
		r.Handle("/metrics", stats.PromHandler())
	}

	return r
}

// Start begins serving HTTP requests in a separate goroutine.
func Start(opts Options) error {
	var (
		done bool
		err  error
	)

	once.Do(func() {
		listener, err = net.Listen("tcp", opts.Addr)
		if err != nil {
			return
		}

		server = &http.Server{
			Handler:           NewRouter(opts),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			logger.Info("starting API server", "addr", listener.Addr().String())
			// Serve returns http.ErrServerClosed when Shutdown is called.
			if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("API server stopped", "err", err)
			}
		}()

		done = true
	})

	if err != nil {
		return err
	}
	if !done {
		return ErrAPIAlreadyInitialized
	}

	return nil
}

// Addr returns the address the server listens on.
func Addr() string {
	if listener == nil {
		return ""
	}
	return listener.Addr().String()
}

// Stop gracefully shuts down the server within the provided timeout.
func Stop(timeout time.Duration) error {
	if server == nil {
		return ErrAPINotStarted
	}

	logger.Info("stopping API server", "addr", Addr())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.Shutdown(ctx)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic in API handler", "path", r.URL.Path, "panic", rec)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
