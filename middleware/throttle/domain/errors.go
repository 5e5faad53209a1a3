package domain

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable embrulha falhas do backend de contadores.
var ErrStoreUnavailable = errors.New("throttle: counter store unavailable")

// ConfigurationError é fatal: aborta antes de qualquer acesso ao store.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("throttle: invalid %s configuration: %s", e.Option, e.Reason)
}

// LimitExceededError não é um defeito: representa a rejeição normal de uma
// requisição acima do limite (status + mensagem configurados).
type LimitExceededError struct {
	Status  int
	Message string
}

func (e *LimitExceededError) Error() string {
	return e.Message
}

// IsLimitExceeded é um atalho para errors.As.
func IsLimitExceeded(err error) bool {
	var le *LimitExceededError
	return errors.As(err, &le)
}
