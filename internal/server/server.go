// Package server provides HTTP server initialization and lifecycle management
// for the Kindred API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scrypster/kindred/internal/config"
	"github.com/scrypster/kindred/internal/engine"
	"github.com/scrypster/kindred/web/handlers"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Dependencies are the components served over HTTP.
type Dependencies struct {
	// Kinship answers classification and resolution requests.
	Kinship handlers.KinshipService

	// Store backs the person and relationship endpoints.
	Store handlers.PeopleStore

	// Purger is notified after writes. Optional.
	Purger handlers.Purger

	// Limits are the effective engine limits reported by /api/config.
	Limits engine.Config

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Handler builds the full middleware-wrapped route tree.
func Handler(cfg *config.Config, deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	kinshipHandlers := handlers.NewKinshipHandlers(deps.Kinship, logger)
	peopleHandlers := handlers.NewPeopleHandlers(deps.Store, deps.Purger, logger)

	// API routes (require auth in production mode)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/people/{id}/kin", kinshipHandlers.GetKin)
	apiMux.HandleFunc("GET /api/kinship", kinshipHandlers.GetKinship)
	apiMux.HandleFunc("GET /api/people/{id}", peopleHandlers.GetPerson)
	apiMux.HandleFunc("POST /api/people", peopleHandlers.CreatePerson)
	apiMux.HandleFunc("POST /api/relationships", peopleHandlers.CreateRelationship)
	apiMux.HandleFunc("DELETE /api/relationships/{id}", peopleHandlers.DeleteRelationship)
	apiMux.HandleFunc("GET /api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, handlers.ToConfigResponse(cfg, deps.Limits))
	})

	mux := http.NewServeMux()

	// Health check endpoint (no auth required)
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, handlers.HealthResponse{
			Status:  "healthy",
			Version: Version,
			Store:   cfg.Storage.StorageEngine,
		})
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	// Wrap API routes with auth middleware
	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	rateLimiter := handlers.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Request id innermost, then rate limiting, then security headers
	handler := handlers.RequestIDMiddleware(mux)
	handler = handlers.RateLimitMiddleware(handler, rateLimiter)
	handler = handlers.SecurityHeadersMiddleware(handler)
	return handler
}

// Start initializes and starts the HTTP server. It returns the actual address
// being listened on (useful for testing with port 0) and a channel that is
// closed once the server has shut down after ctx is cancelled.
func Start(ctx context.Context, cfg *config.Config, deps Dependencies) (string, <-chan struct{}, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Create server with security timeouts
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      Handler(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	stopped := make(chan struct{})

	// Handle graceful shutdown
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server listening", "addr", actualAddr, "store", cfg.Storage.StorageEngine)
	return actualAddr, stopped, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
