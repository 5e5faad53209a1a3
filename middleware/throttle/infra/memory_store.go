package infra

import (
	"context"
	"sync"
	"time"

	"github.com/chrisShick/Throttle/middleware/throttle/domain"
)

// MemoryStore é um CounterStore em memória com expiração por chave.
//
// Todas as operações acontecem sob o mesmo mutex, então Increment é atômico
// dentro do processo. Não compartilha estado entre réplicas: para vários
// processos use RedisStore.
type MemoryStore struct {
	mu           sync.Mutex
	entries      map[string]*memoryEntry
	now          func() time.Time
	cleanupEvery time.Duration
}

type memoryEntry struct {
	value int64
	// zero = sem expiração
	expiresAt time.Time
}

type MemoryStoreOption func(*MemoryStore)

// WithClock troca o relógio usado para TTL (útil em testes).
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func WithCleanupEvery(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) { s.cleanupEvery = d }
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		entries:      make(map[string]*memoryEntry),
		now:          time.Now,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Engine() string              { return "memory" }
func (s *MemoryStore) CleanupEvery() time.Duration { return s.cleanupEvery }

func (s *MemoryStore) Read(_ context.Context, key string) (int64, bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.live(key, now)
	if !ok {
		return 0, false, nil
	}
	return ent.value, true, nil
}

func (s *MemoryStore) Write(_ context.Context, key string, value int64, ttl time.Duration) error {
	ent := &memoryEntry{value: value}
	if ttl > 0 {
		ent.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = ent
	s.mu.Unlock()
	return nil
}

// Increment em chave ausente cria a chave sem expiração (mesma semântica do INCRBY).
// O TTL de uma chave existente é preservado.
func (s *MemoryStore) Increment(_ context.Context, key string, delta int64) (int64, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.live(key, now)
	if !ok {
		ent = &memoryEntry{}
		s.entries[key] = ent
	}
	ent.value += delta
	return ent.value, nil
}

// Len conta as chaves armazenadas, inclusive as expiradas que ainda não foram limpas.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// live precisa ser chamado com s.mu travado.
func (s *MemoryStore) live(key string, now time.Time) (*memoryEntry, bool) {
	ent, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !ent.expiresAt.IsZero() && !now.Before(ent.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return ent, true
}

// Cleanup remove chaves expiradas.
func (s *MemoryStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if !ent.expiresAt.IsZero() && !now.Before(ent.expiresAt) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa chaves expiradas periodicamente.
// Pare cancelando o contexto.
func (s *MemoryStore) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context no janitor.
type DoneContext interface {
	Done() <-chan struct{}
}

var _ domain.CounterStore = (*MemoryStore)(nil)
