package throttle

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cast"

	"github.com/chrisShick/Throttle/middleware/throttle/domain"
)

// FromProvider monta Options a partir de um domain.ConfigProvider.
//
// Chaves: namespace, message, interval, limit, status, identifier, headers.
// identifier precisa ser chamável (IdentifierFunc ou func(*http.Request) string);
// qualquer outro valor é *domain.ConfigurationError, sem cair no padrão.
// headers que não formam um mapeamento desligam a anotação.
func FromProvider(p domain.ConfigProvider) (Options, error) {
	var opts Options
	cfg := &opts.Config

	if v, ok := p.Get(domain.OptionIdentifier); ok && v != nil {
		fn, err := identifierFrom(v)
		if err != nil {
			return Options{}, err
		}
		opts.Identifier = fn
	}

	if v, ok := p.Get(domain.OptionNamespace); ok {
		cfg.Namespace = cast.ToString(v)
	}
	if v, ok := p.Get(domain.OptionMessage); ok {
		cfg.Message = cast.ToString(v)
	}

	if v, ok := p.Get(domain.OptionInterval); ok {
		d, err := intervalFrom(v)
		if err != nil {
			return Options{}, err
		}
		cfg.Interval = d
	}

	if v, ok := p.Get(domain.OptionLimit); ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			return Options{}, &domain.ConfigurationError{Option: domain.OptionLimit, Reason: err.Error()}
		}
		cfg.Limit = n
	} else {
		cfg.Limit = domain.DefaultLimit
	}

	if v, ok := p.Get(domain.OptionStatus); ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			return Options{}, &domain.ConfigurationError{Option: domain.OptionStatus, Reason: err.Error()}
		}
		cfg.Status = n
	}

	if v, ok := p.Get(domain.OptionHeaders); ok {
		cfg.Headers = headersFrom(v)
	}

	return opts, nil
}

func identifierFrom(v any) (IdentifierFunc, error) {
	switch fn := v.(type) {
	case IdentifierFunc:
		return fn, nil
	case func(*http.Request) string:
		return fn, nil
	default:
		return nil, &domain.ConfigurationError{
			Option: domain.OptionIdentifier,
			Reason: fmt.Sprintf("expected a callable func(*http.Request) string, got %T", v),
		}
	}
}

func intervalFrom(v any) (time.Duration, error) {
	switch x := v.(type) {
	case time.Duration:
		if x <= 0 {
			return 0, &domain.ConfigurationError{Option: domain.OptionInterval, Reason: "must be positive"}
		}
		return x, nil
	case string:
		return domain.ParseInterval(x)
	default:
		secs, err := cast.ToIntE(v)
		if err != nil || secs <= 0 {
			return 0, &domain.ConfigurationError{Option: domain.OptionInterval, Reason: fmt.Sprintf("cannot use %T as interval", v)}
		}
		return time.Duration(secs) * time.Second, nil
	}
}

func headersFrom(v any) domain.HeaderNames {
	if h, ok := v.(domain.HeaderNames); ok {
		return h
	}
	m, err := cast.ToStringMapStringE(v)
	if err != nil {
		return domain.HeaderNames{}
	}
	return domain.HeaderNames(m)
}
