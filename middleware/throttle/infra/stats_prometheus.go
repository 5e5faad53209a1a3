package infra

import (
	"context"
	"errors"
	"fmt"

	"github.com/chrisShick/Throttle/middleware/throttle/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore exporta as decisões como métricas Prometheus.
//
// Os labels são só outcome e method; path/identificador ficam de fora por cardinalidade.
type PrometheusStatsStore struct {
	Decisions *prometheus.CounterVec
	Hits      *prometheus.HistogramVec
}

// NewPrometheusStatsStore registra os coletores em reg (nil = DefaultRegisterer).
// Se já existirem coletores iguais registrados, eles são reaproveitados.
func NewPrometheusStatsStore(reg prometheus.Registerer, namespace string) (*PrometheusStatsStore, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "throttle"
	}

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_total",
		Help:      "Throttle decisions partitioned by outcome and method.",
	}, []string{"outcome", "method"})

	hits := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "interval_hits",
		Help:      "Counter value observed after each increment, per outcome.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"outcome"})

	var err error
	if decisions, err = registerOrExisting(reg, decisions); err != nil {
		return nil, err
	}
	if hits, err = registerOrExisting(reg, hits); err != nil {
		return nil, err
	}

	return &PrometheusStatsStore{Decisions: decisions, Hits: hits}, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	outcome := "denied"
	if ev.Allowed {
		outcome = "allowed"
	}
	s.Decisions.WithLabelValues(outcome, ev.Method).Inc()
	s.Hits.WithLabelValues(outcome).Observe(float64(ev.Count))
	return nil
}

func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
			return c, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return c, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}
