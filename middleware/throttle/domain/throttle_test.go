package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_WithDefaultsKeepsZeroLimit(t *testing.T) {
	cfg := Config{Limit: 0}.WithDefaults()

	assert.Equal(t, 0, cfg.Limit)
	assert.Equal(t, DefaultMessage, cfg.Message)
	assert.Equal(t, DefaultStatus, cfg.Status)
	assert.Equal(t, DefaultInterval, cfg.Interval)
	assert.Equal(t, DefaultNamespace, cfg.Namespace)
	assert.True(t, cfg.Headers.Valid())

	// mapeamento não nulo fica como veio, mesmo inválido
	assert.False(t, Config{Headers: HeaderNames{}}.WithDefaults().Headers.Valid())
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, Config{Limit: 10}.WithDefaults().Validate())

	bad := []Config{
		{Interval: -time.Second, Status: 429},
		{Interval: time.Second, Limit: -1, Status: 429},
		{Interval: time.Second, Status: 200},
	}
	for _, c := range bad {
		var cfgErr *ConfigurationError
		assert.True(t, errors.As(c.Validate(), &cfgErr), "expected *ConfigurationError for %+v", c)
	}
}

func TestHeaderNames_Valid(t *testing.T) {
	assert.True(t, DefaultHeaderNames().Valid())
	assert.False(t, HeaderNames(nil).Valid())
	assert.False(t, HeaderNames{HeaderLimit: "L", HeaderRemaining: "R"}.Valid())
}

func TestDecision_ErrOnlyWhenDenied(t *testing.T) {
	assert.NoError(t, Decision{Allowed: true}.Err())

	err := Decision{Allowed: false, Status: 429, Message: DefaultMessage}.Err()
	require.True(t, IsLimitExceeded(err))
	assert.EqualError(t, err, DefaultMessage)
}

func TestDecision_RetryAfter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	d := Decision{Reset: now.Add(42 * time.Second).Unix(), ResetKnown: true}
	assert.Equal(t, 42*time.Second, d.RetryAfter(now))
	assert.Zero(t, Decision{Reset: now.Unix() - 5, ResetKnown: true}.RetryAfter(now))
	assert.Zero(t, Decision{}.RetryAfter(now))
}

func TestMapProvider_GetSet(t *testing.T) {
	p := NewMapProvider(map[string]any{OptionLimit: 5})

	v, ok := p.Get(OptionLimit)
	require.True(t, ok)
	assert.Equal(t, 5, v)

	_, ok = p.Get(OptionMessage)
	assert.False(t, ok)

	p.Set(OptionMessage, "slow down")
	v, _ = p.Get(OptionMessage)
	assert.Equal(t, "slow down", v)

	var zero MapProvider
	zero.Set(OptionLimit, 1)
	v, ok = zero.Get(OptionLimit)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}
