package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sobe o reverse proxy com throttle",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, v, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}
		if cfg.Server.UpstreamURL == "" {
			return errors.New("server.upstream_url is required")
		}
		target, err := url.Parse(cfg.Server.UpstreamURL)
		if err != nil {
			return fmt.Errorf("invalid server.upstream_url: %w", err)
		}

		logger, err := newLogger(cfg.Logging)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		var rdb redis.Cmdable
		if cfg.needsRedis() {
			client, err := newRedisClient(ctx, cfg.Redis, logger)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()
			rdb = client
		}

		reg := prometheus.NewRegistry()
		gt, err := buildThrottle(cfg, v, rdb, reg, logger)
		if err != nil {
			return err
		}
		if gt.memStore != nil {
			gt.memStore.StartJanitor(ctx)
		}

		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("proxy error",
				zap.String("path", r.URL.Path),
				zap.String("request_id", r.Header.Get(requestIDHeader)),
				zap.Error(err))
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}

		srv := &http.Server{
			Addr:              cfg.Server.ListenAddr,
			Handler:           buildHandler(cfg, gt, proxy, reg),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       90 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		tc := gt.engine.Config()
		logger.Info("gateway listening",
			zap.String("addr", cfg.Server.ListenAddr),
			zap.String("upstream", target.String()))
		logger.Info("throttle",
			zap.String("namespace", tc.Namespace),
			zap.Int("limit", tc.Limit),
			zap.Duration("interval", tc.Interval),
			zap.String("store", cfg.Store.Backend),
			zap.String("stats", cfg.Stats.Backend),
			zap.String("key_header", cfg.Throttle.KeyHeader),
			zap.Bool("trust_xff", cfg.Throttle.TrustXFF),
			zap.Bool("fail_open", cfg.Throttle.FailOpen))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		if gt.memStats != nil {
			total := gt.memStats.Total()
			logger.Info("throttle totals",
				zap.Int64("allowed", total.Allowed),
				zap.Int64("denied", total.Denied))
		}
		return nil
	},
}
