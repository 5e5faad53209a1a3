package domain

import (
	"context"
	"time"
)

// StatsEvent representa um evento de decisão do throttle.
//
// Observação: cuidado com cardinalidade (ex.: salvar Identifier/Path sem controle
// pode explodir o número de séries/chaves em uma base como Redis/Prometheus).
type StatsEvent struct {
	Namespace  string
	Identifier string
	Allowed    bool
	// Count é o valor do contador do intervalo depois do incremento.
	Count int64

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do throttle.
//
// O middleware trata erro como best-effort (não derruba request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
