package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisShick/Throttle/middleware/throttle/infra"
)

func TestRegistry_NamespaceIsCreatedOnceAndReused(t *testing.T) {
	r := NewRegistry(infra.NewMemoryStore())

	first := r.Namespace("api", time.Minute)
	second := r.Namespace("api", time.Hour)
	require.Same(t, first, second)

	cfg := first.Config()
	assert.Equal(t, time.Minute, cfg.Duration, "duration comes from first use")
	assert.Equal(t, "memory", cfg.Engine)
	assert.Equal(t, "api_", cfg.Prefix)
	assert.Len(t, r.Configured(), 1)
}

func TestNamespaceStore_Keys(t *testing.T) {
	ns := NewRegistry(infra.NewMemoryStore()).Namespace("throttle", time.Minute)

	assert.Equal(t, "throttle_1.2.3.4", ns.CounterKey("1.2.3.4"))
	assert.Equal(t, "throttle_1.2.3.4_expires", ns.ExpiresKey("1.2.3.4"))
}

func TestNamespaceStore_WriteUsesNamespaceDuration(t *testing.T) {
	clock := baseTime
	backend := infra.NewMemoryStore(infra.WithClock(func() time.Time { return clock }))
	ns := NewRegistry(backend).Namespace("throttle", time.Minute)
	ctx := context.Background()

	require.NoError(t, ns.Write(ctx, "k", 7))
	clock = clock.Add(time.Minute)

	_, ok, err := ns.Read(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "value should expire after the namespace duration")
}
