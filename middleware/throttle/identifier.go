package throttle

import (
	"net"
	"net/http"
	"strings"
)

// IdentifierFunc deriva a chave do cliente. Deve ser pura e determinística.
// String vazia é válida: todos os clientes sem identificação dividem um contador.
type IdentifierFunc func(r *http.Request) string

// ClientIP é o identificador padrão: o host de RemoteAddr.
func ClientIP(r *http.Request) string {
	return DefaultIdentifier("", false)(r)
}

func DefaultIdentifier(keyHeader string, trustXFF bool) IdentifierFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				parts := strings.Split(xff, ",")
				if ip := strings.TrimSpace(parts[0]); ip != "" {
					return ip
				}
			}
		}

		// fallback: RemoteAddr
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}
