// Package application contém os casos de uso do throttle: o registro de stores
// por namespace e o avaliador de limite (touch/increment/decide).
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(ctx, identifier) retorna uma Decision (allow/deny + contagem).
package application
