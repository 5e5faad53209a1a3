package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerSettings   `mapstructure:"server"`
	Throttle ThrottleSettings `mapstructure:"throttle"`
	Store    StoreSettings    `mapstructure:"store"`
	Redis    RedisSettings    `mapstructure:"redis"`
	Stats    StatsSettings    `mapstructure:"stats"`
	Metrics  MetricsSettings  `mapstructure:"metrics"`
	Logging  LoggingSettings  `mapstructure:"logging"`
}

type ServerSettings struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	UpstreamURL     string        `mapstructure:"upstream_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ThrottleSettings cobre só o que não passa pelo ConfigProvider.
// namespace/message/interval/limit/status/headers são lidos direto do viper
// por infra.ViperProvider (prefixo "throttle").
type ThrottleSettings struct {
	KeyHeader string   `mapstructure:"key_header"`
	TrustXFF  bool     `mapstructure:"trust_xff"`
	FailOpen  bool     `mapstructure:"fail_open"`
	Skip      []string `mapstructure:"skip"`
}

// StoreSettings escolhe o backend de contadores: memory ou redis.
type StoreSettings struct {
	Backend      string        `mapstructure:"backend"`
	JanitorEvery time.Duration `mapstructure:"janitor_every"`
}

type RedisSettings struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// StatsSettings escolhe onde as decisões são registradas: none, memory, redis ou prometheus.
type StatsSettings struct {
	Backend   string        `mapstructure:"backend"`
	Prefix    string        `mapstructure:"prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
	Bucket    string        `mapstructure:"bucket"`
	TrackKeys bool          `mapstructure:"track_keys"`
}

type MetricsSettings struct {
	Path string `mapstructure:"path"`
}

type LoggingSettings struct {
	Env   string `mapstructure:"env"`
	Level string `mapstructure:"level"`
}

var envKeys = []string{
	"server.listen_addr",
	"server.upstream_url",
	"server.shutdown_timeout",
	"throttle.namespace",
	"throttle.message",
	"throttle.interval",
	"throttle.limit",
	"throttle.status",
	"throttle.key_header",
	"throttle.trust_xff",
	"throttle.fail_open",
	"throttle.skip",
	"store.backend",
	"store.janitor_every",
	"redis.addr",
	"redis.password",
	"redis.db",
	"redis.prefix",
	"stats.backend",
	"stats.prefix",
	"stats.ttl",
	"stats.bucket",
	"stats.track_keys",
	"metrics.path",
	"logging.env",
	"logging.level",
}

// loadConfig monta o viper (defaults, env, arquivo opcional) e devolve a
// configuração decodificada junto com a instância, que também alimenta o
// ConfigProvider do throttle.
func loadConfig(path string) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := bindEnvs(v, envKeys); err != nil {
		return nil, nil, err
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, v, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("redis.addr is required when store.backend=redis")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}

	switch c.Stats.Backend {
	case "none", "memory", "prometheus":
	case "redis":
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("redis.addr is required when stats.backend=redis")
		}
	default:
		return fmt.Errorf("unknown stats.backend %q", c.Stats.Backend)
	}
	return nil
}

func (c *Config) needsRedis() bool {
	return c.Store.Backend == "redis" || c.Stats.Backend == "redis"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("throttle.interval", "+1 minute")
	v.SetDefault("throttle.limit", 10)
	v.SetDefault("throttle.skip", []string{})

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.janitor_every", 2*time.Minute)

	v.SetDefault("redis.db", 0)

	v.SetDefault("stats.backend", "none")
	v.SetDefault("stats.prefix", "throttle:stats")
	v.SetDefault("stats.ttl", 24*time.Hour)
	v.SetDefault("stats.bucket", "minute")

	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("logging.env", "production")
	v.SetDefault("logging.level", "info")
}

// bindEnvs aceita tanto THROTTLE_<CHAVE> quanto <CHAVE> (ex.: SERVER_UPSTREAM_URL).
func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "THROTTLE_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
