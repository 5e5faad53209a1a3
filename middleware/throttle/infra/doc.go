// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - MemoryStore: contadores em memória com TTL e janitor
//   - RedisStore: contadores em Redis (GET/SET EX/INCRBY) via go-redis
//   - MemoryStatsStore, RedisStatsStore, PrometheusStatsStore: estatísticas de decisão
//   - ViperProvider: domain.ConfigProvider sobre spf13/viper
package infra
