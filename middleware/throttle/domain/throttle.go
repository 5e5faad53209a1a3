package domain

// Camada de domínio do throttle.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

const (
	DefaultNamespace = "throttle"
	DefaultMessage   = "Rate limit exceeded"
	DefaultInterval  = time.Minute
	DefaultLimit     = 10
	DefaultStatus    = 429 // Too Many Requests
)

// Papéis lógicos dos headers de telemetria.
const (
	HeaderLimit     = "limit"
	HeaderRemaining = "remaining"
	HeaderReset     = "reset"
)

// HeaderNames mapeia o papel lógico (limit, remaining, reset) para o nome do header.
type HeaderNames map[string]string

// DefaultHeaderNames devolve uma cópia nova a cada chamada (o map é mutável).
func DefaultHeaderNames() HeaderNames {
	return HeaderNames{
		HeaderLimit:     "X-RateLimit-Limit",
		HeaderRemaining: "X-RateLimit-Remaining",
		HeaderReset:     "X-RateLimit-Reset",
	}
}

// Valid indica se o mapeamento tem os três papéis com nome não vazio.
func (h HeaderNames) Valid() bool {
	if h == nil {
		return false
	}
	for _, role := range []string{HeaderLimit, HeaderRemaining, HeaderReset} {
		if h[role] == "" {
			return false
		}
	}
	return true
}

// Config é imutável por instância do pipeline.
type Config struct {
	// Namespace separa os contadores deste throttle de outros no mesmo backend.
	Namespace string
	Message   string
	// Status usado na rejeição (padrão 429).
	Status   int
	Interval time.Duration
	// Limit é o máximo de hits por intervalo. Zero bloqueia tudo.
	Limit   int
	Headers HeaderNames
}

// WithDefaults preenche campos zerados. Limit não é tocado: 0 é um valor válido.
// Headers nil recebe os nomes padrão; um mapeamento não nil e inválido é mantido
// (o anotador simplesmente não escreve headers).
func (c Config) WithDefaults() Config {
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.Message == "" {
		c.Message = DefaultMessage
	}
	if c.Status == 0 {
		c.Status = DefaultStatus
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.Headers == nil {
		c.Headers = DefaultHeaderNames()
	}
	return c
}

// Validate retorna *ConfigurationError para valores que não fazem sentido.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return &ConfigurationError{Option: "interval", Reason: "must be positive"}
	}
	if c.Limit < 0 {
		return &ConfigurationError{Option: "limit", Reason: "must not be negative"}
	}
	if c.Status < 400 || c.Status > 599 {
		return &ConfigurationError{Option: "status", Reason: "must be a 4xx or 5xx status code"}
	}
	return nil
}

// Decision é o resultado da avaliação de uma requisição.
type Decision struct {
	Allowed    bool
	Identifier string

	Limit int
	// Count é o valor do contador depois do incremento.
	Count     int64
	Remaining int

	// Reset é o epoch (segundos) em que a cota do intervalo atual renova.
	// ResetKnown=false quando o registro de expiração ainda não existe.
	Reset      int64
	ResetKnown bool

	Status  int
	Message string
}

// Err devolve a rejeição estruturada quando a decisão bloqueia, ou nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &LimitExceededError{Status: d.Status, Message: d.Message}
}

// RetryAfter estima quanto falta para o reset a partir de now.
// Se o reset não é conhecido, devolve 0 (sem recomendação).
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if !d.ResetKnown {
		return 0
	}
	wait := time.Unix(d.Reset, 0).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}
