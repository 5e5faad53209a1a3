package application

import (
	"context"
	"fmt"
	"time"

	"github.com/chrisShick/Throttle/middleware/throttle/domain"
)

// Service concentra a regra de contagem do throttle.
//
// Ele não sabe nada sobre HTTP (headers/status na resposta), apenas retorna uma decisão.
// A atomicidade vem do Increment do backend; o serviço não trava nada.
type Service struct {
	Stores *Registry
	Config domain.Config
	// Now é usado para o epoch de reset. Nil = time.Now.
	Now func() time.Time
}

func (s Service) store() *NamespaceStore {
	return s.Stores.Namespace(s.Config.Namespace, s.Config.Interval)
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Touch inicializa o intervalo se necessário e incrementa o contador,
// devolvendo o valor depois do incremento.
//
// A inicialização (contador=0 e registro de expiração) não é atômica com o
// incremento: duas primeiras requisições simultâneas podem escrever 0 duas vezes.
// Isso só acontece quando o Read viu a chave ausente.
func (s Service) Touch(ctx context.Context, identifier string) (int64, error) {
	st := s.store()
	key := st.CounterKey(identifier)

	prev, ok, err := st.Read(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	if !ok {
		if err := s.startInterval(ctx, st, identifier, 0); err != nil {
			return 0, err
		}
	}

	count, err := st.Increment(ctx, key, 1)
	if err != nil {
		return 0, fmt.Errorf("increment counter: %w", err)
	}

	// O Read viu um contador em andamento, mas o Increment devolveu 1: a chave
	// expirou no meio e foi recriada sem TTL nem registro de expiração.
	// O 1 abre um intervalo novo.
	if ok && prev > 0 && count == 1 {
		if err := s.startInterval(ctx, st, identifier, count); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// startInterval grava o contador com a duração do namespace e o epoch de reset.
func (s Service) startInterval(ctx context.Context, st *NamespaceStore, identifier string, count int64) error {
	if err := st.Write(ctx, st.CounterKey(identifier), count); err != nil {
		return fmt.Errorf("init counter: %w", err)
	}
	reset := s.now().Add(s.Config.Interval).Unix()
	if err := st.Write(ctx, st.ExpiresKey(identifier), reset); err != nil {
		return fmt.Errorf("init expiration: %w", err)
	}
	return nil
}

// Remaining é max(0, limit - count).
func Remaining(limit int, count int64) int {
	r := int64(limit) - count
	if r < 0 {
		return 0
	}
	return int(r)
}

// Exceeded: o incremento vem antes da comparação, então limit=N libera exatamente N.
func Exceeded(limit int, count int64) bool {
	return count > int64(limit)
}

// Reset lê o epoch de expiração do intervalo atual.
func (s Service) Reset(ctx context.Context, identifier string) (int64, bool, error) {
	st := s.store()
	v, ok, err := st.Read(ctx, st.ExpiresKey(identifier))
	if err != nil {
		return 0, false, fmt.Errorf("read expiration: %w", err)
	}
	return v, ok, nil
}

func (s Service) Decide(ctx context.Context, identifier string) (domain.Decision, error) {
	count, err := s.Touch(ctx, identifier)
	if err != nil {
		return domain.Decision{}, err
	}

	reset, known, err := s.Reset(ctx, identifier)
	if err != nil {
		return domain.Decision{}, err
	}

	return domain.Decision{
		Allowed:    !Exceeded(s.Config.Limit, count),
		Identifier: identifier,
		Limit:      s.Config.Limit,
		Count:      count,
		Remaining:  Remaining(s.Config.Limit, count),
		Reset:      reset,
		ResetKnown: known,
		Status:     s.Config.Status,
		Message:    s.Config.Message,
	}, nil
}
