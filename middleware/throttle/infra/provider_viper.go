package infra

import (
	"strings"

	"github.com/chrisShick/Throttle/middleware/throttle/domain"

	"github.com/spf13/viper"
)

// ViperProvider adapta um *viper.Viper para domain.ConfigProvider.
// As chaves são lidas sob prefix (ex.: "throttle" -> "throttle.limit").
type ViperProvider struct {
	v      *viper.Viper
	prefix string
}

func NewViperProvider(v *viper.Viper, prefix string) *ViperProvider {
	if v == nil {
		v = viper.New()
	}
	return &ViperProvider{v: v, prefix: strings.Trim(prefix, ".")}
}

func (p *ViperProvider) Get(key string) (any, bool) {
	full := p.key(key)
	if !p.v.IsSet(full) {
		return nil, false
	}
	return p.v.Get(full), true
}

func (p *ViperProvider) Set(key string, value any) {
	p.v.Set(p.key(key), value)
}

func (p *ViperProvider) key(k string) string {
	if p.prefix == "" {
		return k
	}
	return p.prefix + "." + k
}

var _ domain.ConfigProvider = (*ViperProvider)(nil)
