package infra

import (
	"context"
	"sync"

	"github.com/chrisShick/Throttle/middleware/throttle/domain"
)

type Counters struct {
	Allowed int64
	Denied  int64
}

func (c Counters) add(allowed bool) Counters {
	if allowed {
		c.Allowed++
	} else {
		c.Denied++
	}
	return c
}

// MemoryStatsStore é uma implementação simples em memória das estatísticas de decisão.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   Counters
	byRoute map[string]Counters
	byID    map[string]Counters

	trackIdentifiers bool
}

type MemoryStatsOption func(*MemoryStatsStore)

// WithTrackIdentifiers guarda contadores por identificador (cuidado com cardinalidade).
func WithTrackIdentifiers(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackIdentifiers = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byRoute: make(map[string]Counters),
		byID:    make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = s.total.add(ev.Allowed)
	s.byRoute[route] = s.byRoute[route].add(ev.Allowed)
	if s.trackIdentifiers {
		s.byID[ev.Identifier] = s.byID[ev.Identifier].add(ev.Allowed)
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByRoute() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byRoute))
	for k, v := range s.byRoute {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByIdentifier() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byID))
	for k, v := range s.byID {
		out[k] = v
	}
	return out
}
