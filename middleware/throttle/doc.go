// Package throttle fornece o adapter HTTP (net/http) do throttle: limite de
// requisições por cliente em intervalos fixos, com headers de telemetria.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: registro de stores por namespace e avaliador de limite, sem net/http
//   - infra: backends de contadores (memória, Redis), estatísticas e provider viper
//   - throttle (este pacote): Engine, middleware HTTP, resolução do identificador
//     e tradução da decisão para status/headers
//
// Fluxo por requisição:
//
//  1. Resolve o identificador do cliente (IP por padrão, ou função configurada)
//  2. Inicializa o contador do intervalo se ausente (contador=0 + epoch de reset)
//  3. Incrementa o contador de forma atômica no store
//  4. Compara com o limite: acima dele a requisição é rejeitada (429 por padrão)
//  5. Escreve X-RateLimit-Limit/Remaining/Reset, tanto no allow quanto no deny
//
// A garantia do limite depende do incremento atômico do backend. Um store sem
// incremento atômico quebra o limite sob concorrência.
package throttle
