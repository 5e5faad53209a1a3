package throttle

import (
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/chrisShick/Throttle/middleware/throttle/application"
	"github.com/chrisShick/Throttle/middleware/throttle/domain"
	"github.com/chrisShick/Throttle/middleware/throttle/infra"
)

type Options struct {
	Config domain.Config

	// Store é o backend padrão da aplicação. Nil = MemoryStore (só para um processo).
	Store domain.CounterStore
	// Registry permite compartilhar namespaces entre engines. Quando nil,
	// um Registry novo é criado sobre Store.
	Registry *application.Registry
	Stats    domain.StatsStore

	// Identifier sobrescreve a resolução padrão (KeyHeader/XFF/RemoteAddr).
	Identifier        IdentifierFunc
	KeyHeader         string
	TrustForwardedFor bool

	// FailOpen deixa passar a requisição quando o store falha. Padrão: 503.
	FailOpen bool
	// Skip são paths que não passam pelo throttle (ex.: /health).
	Skip map[string]struct{}

	Logger *zap.Logger
	Now    func() time.Time
}

// Evaluator é o contrato que o pipeline HTTP usa por requisição.
type Evaluator interface {
	Evaluate(r *http.Request) (domain.Decision, error)
}

// Engine resolve o identificador, avalia o limite e anota a resposta.
// Não guarda estado além da configuração: os contadores vivem no store.
type Engine struct {
	cfg        domain.Config
	svc        application.Service
	identifier IdentifierFunc
	stats      domain.StatsStore
	failOpen   bool
	skip       map[string]struct{}
	logger     *zap.Logger
	now        func() time.Time

	// amostra os warnings de store para não inundar o log durante uma queda
	storeErrLog *rate.Sometimes
}

var _ Evaluator = (*Engine)(nil)

// NewEngine valida a configuração antes de qualquer acesso ao store.
func NewEngine(opts Options) (*Engine, error) {
	cfg := opts.Config.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if opts.Identifier == nil {
		opts.Identifier = DefaultIdentifier(opts.KeyHeader, opts.TrustForwardedFor)
	}
	if opts.Registry == nil {
		if opts.Store == nil {
			opts.Store = infra.NewMemoryStore()
		}
		opts.Registry = application.NewRegistry(opts.Store)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Engine{
		cfg: cfg,
		svc: application.Service{
			Stores: opts.Registry,
			Config: cfg,
			Now:    opts.Now,
		},
		identifier:  opts.Identifier,
		stats:       opts.Stats,
		failOpen:    opts.FailOpen,
		skip:        opts.Skip,
		logger:      opts.Logger,
		now:         opts.Now,
		storeErrLog: &rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}, nil
}

func (e *Engine) Config() domain.Config { return e.cfg }

// Evaluate avalia a requisição. Erro só para falha de store; a rejeição por
// limite vem em Decision (Allowed=false, Err() != nil).
func (e *Engine) Evaluate(r *http.Request) (domain.Decision, error) {
	id := e.identifier(r)

	dec, err := e.svc.Decide(r.Context(), id)
	if err != nil {
		return domain.Decision{Identifier: id, Limit: e.cfg.Limit}, err
	}

	if e.stats != nil {
		if err := e.stats.Record(r.Context(), domain.StatsEvent{
			Namespace:  e.cfg.Namespace,
			Identifier: id,
			Allowed:    dec.Allowed,
			Count:      dec.Count,
			Method:     r.Method,
			Path:       r.URL.Path,
			At:         e.now(),
		}); err != nil {
			e.logger.Debug("throttle stats record failed", zap.Error(err))
		}
	}

	if !dec.Allowed {
		e.logger.Debug("request throttled",
			zap.String("identifier", id),
			zap.Int64("count", dec.Count),
			zap.Int("limit", dec.Limit))
	}
	return dec, nil
}

func (e *Engine) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := e.skip[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		dec, err := e.Evaluate(r)
		if err != nil {
			e.storeErrLog.Do(func() {
				e.logger.Warn("throttle store failure",
					zap.String("identifier", dec.Identifier),
					zap.Bool("fail_open", e.failOpen),
					zap.Error(err))
			})
			if e.failOpen {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}

		Annotate(w.Header(), e.cfg.Headers, dec)

		if !dec.Allowed {
			if wait := dec.RetryAfter(e.now()); wait > 0 {
				w.Header().Set("Retry-After", formatInt(int(math.Ceil(wait.Seconds()))))
			}
			http.Error(w, dec.Message, dec.Status)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Middleware é o atalho NewEngine + Handler.
func Middleware(opts Options) (func(next http.Handler) http.Handler, error) {
	e, err := NewEngine(opts)
	if err != nil {
		return nil, err
	}
	return e.Handler, nil
}
