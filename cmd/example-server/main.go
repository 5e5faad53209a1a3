package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/chrisShick/Throttle/middleware/throttle"
	"github.com/chrisShick/Throttle/middleware/throttle/application"
	"github.com/chrisShick/Throttle/middleware/throttle/domain"
	"github.com/chrisShick/Throttle/middleware/throttle/infra"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r, err := newRouter(ctx, logger)
	if err != nil {
		logger.Fatal("router", zap.Error(err))
	}

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("example server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// newRouter injeta o throttle direto no webserver (sem proxy).
// /api e /login usam namespaces diferentes sobre o mesmo store.
func newRouter(ctx context.Context, logger *zap.Logger) (http.Handler, error) {
	store := infra.NewMemoryStore()
	store.StartJanitor(ctx)
	registry := application.NewRegistry(store)

	// RealIP reescreve RemoteAddr a partir de X-Real-IP/X-Forwarded-For,
	// então o identificador padrão (IP do cliente) já enxerga o IP correto.
	apiThrottle, err := throttle.Middleware(throttle.Options{
		Config:    domain.Config{Namespace: "api", Limit: 5},
		Registry:  registry,
		KeyHeader: "X-Api-Key",
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	loginInterval, err := domain.ParseInterval("+10 minutes")
	if err != nil {
		return nil, err
	}
	loginThrottle, err := throttle.Middleware(throttle.Options{
		Config: domain.Config{
			Namespace: "login",
			Limit:     3,
			Interval:  loginInterval,
			Message:   "Too many login attempts",
		},
		Registry: registry,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(apiThrottle)
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok\n"))
		})
	})

	r.With(loginThrottle).Post("/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r, nil
}
