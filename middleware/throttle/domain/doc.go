// Package domain define contratos e tipos de domínio para o throttle (limite de
// requisições por intervalo fixo).
//
// Este pacote não depende de net/http nem de implementações concretas de cache.
// A intenção é permitir testes de unidade puros e desacoplar a regra de contagem
// dos detalhes de infraestrutura (memória, Redis, etc).
package domain
