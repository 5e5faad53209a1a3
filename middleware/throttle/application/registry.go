package application

import (
	"context"
	"sync"
	"time"

	"github.com/chrisShick/Throttle/middleware/throttle/domain"
)

const expiresSuffix = "_expires"

// Registry guarda a configuração de cache de cada namespace.
//
// A configuração é criada na primeira vez que o namespace é usado, com o mesmo
// engine do backend padrão da aplicação, e reaproveitada depois. Não há teardown:
// o store é um handle passivo.
type Registry struct {
	backend domain.CounterStore

	mu     sync.Mutex
	stores map[string]*NamespaceStore
}

func NewRegistry(backend domain.CounterStore) *Registry {
	return &Registry{
		backend: backend,
		stores:  make(map[string]*NamespaceStore),
	}
}

// Namespace devolve o store do namespace, criando a configuração se ainda não existir.
// A duração só é considerada na criação.
func (r *Registry) Namespace(name string, duration time.Duration) *NamespaceStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ns, ok := r.stores[name]; ok {
		return ns
	}

	ns := &NamespaceStore{
		backend: r.backend,
		config: domain.StoreConfig{
			Namespace: name,
			Engine:    domain.EngineOf(r.backend),
			Prefix:    name + "_",
			Duration:  duration,
		},
	}
	r.stores[name] = ns
	return ns
}

// Configured lista a configuração dos namespaces já inicializados.
func (r *Registry) Configured() []domain.StoreConfig {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.StoreConfig, 0, len(r.stores))
	for _, ns := range r.stores {
		out = append(out, ns.config)
	}
	return out
}

// NamespaceStore é a fachada fina sobre o backend para um namespace:
// chaves ganham o prefixo "<namespace>_" e escritas usam a duração do namespace.
type NamespaceStore struct {
	backend domain.CounterStore
	config  domain.StoreConfig
}

func (s *NamespaceStore) Config() domain.StoreConfig { return s.config }

// CounterKey é "<namespace>_<identifier>".
func (s *NamespaceStore) CounterKey(identifier string) string {
	return s.config.Prefix + identifier
}

// ExpiresKey é o registro "<identifier>_expires" dentro do namespace.
func (s *NamespaceStore) ExpiresKey(identifier string) string {
	return s.config.Prefix + identifier + expiresSuffix
}

func (s *NamespaceStore) Read(ctx context.Context, key string) (int64, bool, error) {
	return s.backend.Read(ctx, key)
}

func (s *NamespaceStore) Write(ctx context.Context, key string, value int64) error {
	return s.backend.Write(ctx, key, value, s.config.Duration)
}

func (s *NamespaceStore) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	return s.backend.Increment(ctx, key, delta)
}
