package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soundwave/config"
	"soundwave/logger"

	"github.com/gorilla/mux"
)

// NewRouter wires the song routes and middleware.
func NewRouter(h *APIHandler, cfg *config.Config) *mux.Router {
	router := mux.NewRouter()

	if cfg == nil {
		cfg = &config.Config{}
	}
	proxies := newTrustedProxies(cfg.TrustedProxies)

	router.Use(corsMiddleware)
	router.Use(loggingMiddleware(proxies))
	if cfg.RateLimitRPS > 0 {
		router.Use(newIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, proxies).middleware)
	}

	router.HandleFunc("/healthz", h.HealthHandler).Methods(http.MethodGet)

	api := router.PathPrefix("/api/songs").Subrouter()
	api.HandleFunc("", h.ListSongsHandler).Methods(http.MethodGet)
	api.HandleFunc("", h.CreateSongHandler).Methods(http.MethodPost)
	api.HandleFunc("/{id}", h.GetSongHandler).Methods(http.MethodGet)
	api.HandleFunc("/{id}", h.UpdateSongHandler).Methods(http.MethodPatch)
	api.HandleFunc("/{id}", h.DeleteSongHandler).Methods(http.MethodDelete)

	// mux only runs middleware on matched routes; answer preflight for every path.
	router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return router
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully within 5 seconds.
func Run(ctx context.Context, cfg *config.Config, h *APIHandler) error {
	// 设置服务器超时
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      NewRouter(h, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
