package domain

import (
	"context"
	"time"
)

// CounterStore é o backend externo de contadores com TTL.
//
// Increment precisa ser atômico por chave: duas chamadas concorrentes nunca
// observam o mesmo valor anterior. Um backend sem essa garantia quebra o limite.
// Increment em chave ausente tem comportamento definido pelo backend; o
// avaliador sempre inicializa a chave antes.
type CounterStore interface {
	Read(ctx context.Context, key string) (value int64, ok bool, err error)
	Write(ctx context.Context, key string, value int64, ttl time.Duration) error
	Increment(ctx context.Context, key string, delta int64) (int64, error)
}

// Engine é opcional: backends que informam a tecnologia usada ("memory", "redis").
type Engine interface {
	Engine() string
}

// EngineOf devolve o nome da tecnologia do backend, ou "custom".
func EngineOf(s CounterStore) string {
	if e, ok := s.(Engine); ok {
		return e.Engine()
	}
	return "custom"
}

// StoreConfig descreve a configuração de cache de um namespace.
type StoreConfig struct {
	Namespace string
	Engine    string
	Prefix    string
	Duration  time.Duration
}
