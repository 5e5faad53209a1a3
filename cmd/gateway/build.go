package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chrisShick/Throttle/middleware/throttle"
	"github.com/chrisShick/Throttle/middleware/throttle/domain"
	"github.com/chrisShick/Throttle/middleware/throttle/infra"
)

func newLogger(cfg LoggingSettings) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Env != "production" {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging.level: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	return zcfg.Build()
}

func redisOptions(cfg RedisSettings) *redis.Options {
	return &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// newRedisClient abre o pool e faz um ping inicial; sem Redis o gateway não sobe.
func newRedisClient(ctx context.Context, cfg RedisSettings, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(redisOptions(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("redis connection established",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB))
	return rdb, nil
}

// gatewayThrottle agrupa o engine e os componentes que o serve precisa
// acompanhar (janitor do store em memória, totais das stats em memória).
type gatewayThrottle struct {
	engine   *throttle.Engine
	memStore *infra.MemoryStore
	memStats *infra.MemoryStatsStore
}

func buildThrottle(cfg *Config, v *viper.Viper, rdb redis.Cmdable, reg prometheus.Registerer, logger *zap.Logger) (*gatewayThrottle, error) {
	gt := &gatewayThrottle{}

	var store domain.CounterStore
	switch cfg.Store.Backend {
	case "redis":
		store = infra.NewRedisStore(rdb, infra.WithKeyPrefix(cfg.Redis.Prefix))
	default:
		gt.memStore = infra.NewMemoryStore(infra.WithCleanupEvery(cfg.Store.JanitorEvery))
		store = gt.memStore
	}

	var stats domain.StatsStore
	switch cfg.Stats.Backend {
	case "memory":
		gt.memStats = infra.NewMemoryStatsStore(infra.WithTrackIdentifiers(cfg.Stats.TrackKeys))
		stats = gt.memStats
	case "redis":
		stats = infra.NewRedisStatsStore(rdb,
			infra.WithStatsPrefix(cfg.Stats.Prefix),
			infra.WithStatsTTL(cfg.Stats.TTL),
			infra.WithStatsBucket(cfg.Stats.Bucket),
			infra.WithStatsTrackIdentifiers(cfg.Stats.TrackKeys),
		)
	case "prometheus":
		ps, err := infra.NewPrometheusStatsStore(reg, "gateway")
		if err != nil {
			return nil, fmt.Errorf("prometheus stats: %w", err)
		}
		stats = ps
	}

	// identifier vem do arquivo só se alguém o colocou lá (e aí falha, porque
	// YAML não carrega função). O normal é compor aqui a partir de key_header/trust_xff.
	provider := infra.NewViperProvider(v, "throttle")
	if _, ok := provider.Get(domain.OptionIdentifier); !ok {
		provider.Set(domain.OptionIdentifier, throttle.DefaultIdentifier(cfg.Throttle.KeyHeader, cfg.Throttle.TrustXFF))
	}

	opts, err := throttle.FromProvider(provider)
	if err != nil {
		return nil, err
	}
	opts.Store = store
	opts.Stats = stats
	opts.FailOpen = cfg.Throttle.FailOpen
	opts.Logger = logger
	opts.Skip = make(map[string]struct{}, len(cfg.Throttle.Skip)+1)
	for _, p := range cfg.Throttle.Skip {
		opts.Skip[p] = struct{}{}
	}
	if cfg.Stats.Backend == "prometheus" {
		opts.Skip[cfg.Metrics.Path] = struct{}{}
	}

	gt.engine, err = throttle.NewEngine(opts)
	if err != nil {
		return nil, err
	}
	return gt, nil
}

// buildHandler monta a cadeia: request id -> throttle -> upstream.
// Com stats em prometheus, o path de métricas é servido sem passar pelo throttle.
func buildHandler(cfg *Config, gt *gatewayThrottle, upstream http.Handler, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	if cfg.Stats.Backend == "prometheus" {
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	mux.Handle("/", gt.engine.Handler(upstream))
	return requestID(mux)
}
