package domain

import "sync"

// Chaves reconhecidas na superfície de configuração.
const (
	OptionNamespace  = "namespace"
	OptionMessage    = "message"
	OptionInterval   = "interval"
	OptionLimit      = "limit"
	OptionStatus     = "status"
	OptionIdentifier = "identifier"
	OptionHeaders    = "headers"
)

// ConfigProvider é o contrato canônico de leitura/escrita de configuração.
//
// O host escolhe o adapter concreto na composição (MapProvider, viper, etc).
type ConfigProvider interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MapProvider é um ConfigProvider em memória, seguro para uso concorrente.
type MapProvider struct {
	mu     sync.RWMutex
	values map[string]any
}

func NewMapProvider(values map[string]any) *MapProvider {
	p := &MapProvider{values: make(map[string]any, len(values))}
	for k, v := range values {
		p.values[k] = v
	}
	return p
}

func (p *MapProvider) Get(key string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

func (p *MapProvider) Set(key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.values == nil {
		p.values = make(map[string]any)
	}
	p.values[key] = value
}
