package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chrisShick/Throttle/middleware/throttle/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, v, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "none", cfg.Stats.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Store.JanitorEvery)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 10, v.GetInt("throttle.limit"))
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("THROTTLE_LIMIT", "3")
	t.Setenv("SERVER_UPSTREAM_URL", "http://upstream:9000")
	t.Setenv("THROTTLE_STORE_BACKEND", "memory")

	cfg, v, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://upstream:9000", cfg.Server.UpstreamURL)
	assert.Equal(t, 3, v.GetInt("throttle.limit"))
}

func TestLoadConfig_RejectsUnknownBackends(t *testing.T) {
	_, _, err := loadConfig(writeConfig(t, "store:\n  backend: etcd\n"))
	assert.ErrorContains(t, err, "unknown store.backend")

	_, _, err = loadConfig(writeConfig(t, "stats:\n  backend: redis\n"))
	assert.ErrorContains(t, err, "redis.addr is required")
}

func TestBuildThrottle_FromFile(t *testing.T) {
	cfg, v, err := loadConfig(writeConfig(t, `
throttle:
  namespace: api
  limit: 2
  interval: "+30 seconds"
  message: "slow down"
  key_header: X-Api-Key
  headers:
    limit: RL-Limit
    remaining: RL-Remaining
    reset: RL-Reset
`))
	require.NoError(t, err)

	gt, err := buildThrottle(cfg, v, nil, prometheus.NewRegistry(), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, gt.memStore)

	tc := gt.engine.Config()
	assert.Equal(t, "api", tc.Namespace)
	assert.Equal(t, 2, tc.Limit)
	assert.Equal(t, 30*time.Second, tc.Interval)
	assert.Equal(t, "slow down", tc.Message)
	assert.Equal(t, "RL-Reset", tc.Headers[domain.HeaderReset])
}

func TestBuildThrottle_IdentifierInFileFailsFast(t *testing.T) {
	cfg, v, err := loadConfig(writeConfig(t, "throttle:\n  identifier: client_ip\n"))
	require.NoError(t, err)

	_, err = buildThrottle(cfg, v, nil, prometheus.NewRegistry(), zaptest.NewLogger(t))

	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, domain.OptionIdentifier, cfgErr.Option)
}

func TestBuildHandler_ThrottlesUpstreamAndServesMetrics(t *testing.T) {
	cfg, v, err := loadConfig(writeConfig(t, `
throttle:
  limit: 2
  key_header: X-Api-Key
stats:
  backend: prometheus
`))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	gt, err := buildThrottle(cfg, v, nil, reg, zaptest.NewLogger(t))
	require.NoError(t, err)

	upstreamCalls := 0
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		assert.NotEmpty(t, r.Header.Get(requestIDHeader))
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(buildHandler(cfg, gt, upstream, reg))
	defer srv.Close()

	get := func(path string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("X-Api-Key", "client-a")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	for i := 0; i < 2; i++ {
		resp := get("/orders")
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
	}

	resp := get("/orders")
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Rate limit exceeded\n", string(body))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	assert.Equal(t, 2, upstreamCalls)

	resp = get("/metrics")
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `gateway_decisions_total{method="GET",outcome="denied"} 1`)
	assert.Contains(t, string(body), `gateway_decisions_total{method="GET",outcome="allowed"} 2`)
}

func TestRequestID_KeepsIncomingID(t *testing.T) {
	var seen string
	h := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(requestIDHeader)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestPrintThrottle(t *testing.T) {
	cfg, v, err := loadConfig(writeConfig(t, `
throttle:
  trust_xff: true
  skip: ["/health", "/ready"]
`))
	require.NoError(t, err)

	gt, err := buildThrottle(cfg, v, nil, prometheus.NewRegistry(), zaptest.NewLogger(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	printThrottle(cmd, cfg, gt.engine.Config())

	out := buf.String()
	assert.Contains(t, out, "limit:      10\n")
	assert.Contains(t, out, "interval:   1m0s\n")
	assert.Contains(t, out, "headers:    limit=X-RateLimit-Limit remaining=X-RateLimit-Remaining reset=X-RateLimit-Reset\n")
	assert.Contains(t, out, "identifier: client ip (trusting X-Forwarded-For)\n")
	assert.Contains(t, out, "skip:       [/health /ready]\n")
}
