package infra

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/chrisShick/Throttle/middleware/throttle/domain"

	"github.com/redis/go-redis/v9"
)

//go:embed stats_peak.lua
var statsPeakScript string

var statsBucketLayouts = map[string]string{
	"minute": "200601021504",
	"hour":   "2006010215",
}

// RedisStatsStore agrega as decisões por namespace em hashes Redis:
//
//	<prefix>:<ns>:total              allowed/denied (cumulativo, sem ttl)
//	<prefix>:<ns>:<bucket>:<stamp>   allowed/denied/peak
//	<prefix>:<ns>:route              "<METHOD> <path>:<outcome>"
//	<prefix>:<ns>:id:<identifier>    allowed/denied/peak (opcional)
//
// peak é o maior contador de intervalo visto (StatsEvent.Count), atualizado
// pelo script stats_peak.lua dentro do mesmo pipeline.
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl aplica nos buckets e nas chaves por identificador.
	ttl time.Duration

	bucket string // "minute" (padrão), "hour" ou "none"

	trackIdentifiers bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

// WithStatsBucket escolhe a granularidade da série temporal. Valor desconhecido vira "none".
func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		b := strings.ToLower(strings.TrimSpace(bucket))
		if _, ok := statsBucketLayouts[b]; !ok {
			b = "none"
		}
		s.bucket = b
	}
}

func WithStatsTrackIdentifiers(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackIdentifiers = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "throttle:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BucketKey devolve a chave do bucket de ns que contém at ("" quando bucket=none).
func (s *RedisStatsStore) BucketKey(namespace string, at time.Time) string {
	layout, ok := statsBucketLayouts[s.bucket]
	if !ok {
		return ""
	}
	return s.namespaceKey(namespace) + ":" + s.bucket + ":" + at.UTC().Format(layout)
}

func (s *RedisStatsStore) namespaceKey(namespace string) string {
	if namespace == "" {
		namespace = domain.DefaultNamespace
	}
	return s.prefix + ":" + namespace
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}
	ttlSecs := int64(s.ttl / time.Second)
	base := s.namespaceKey(ev.Namespace)

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, base+":total", field, 1)

	if bucketKey := s.BucketKey(ev.Namespace, at); bucketKey != "" {
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		pipe.Eval(ctx, statsPeakScript, []string{bucketKey}, ev.Count, ttlSecs)
	}

	route := strings.TrimSpace(strings.TrimSpace(ev.Method) + " " + strings.TrimSpace(ev.Path))
	if route != "" {
		pipe.HIncrBy(ctx, base+":route", route+":"+field, 1)
	}

	if s.trackIdentifiers {
		if id := strings.TrimSpace(ev.Identifier); id != "" {
			idKey := base + ":id:" + id
			pipe.HIncrBy(ctx, idKey, field, 1)
			pipe.Eval(ctx, statsPeakScript, []string{idKey}, ev.Count, ttlSecs)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis stats pipeline: %w", err)
	}
	return nil
}

var _ domain.StatsStore = (*RedisStatsStore)(nil)
