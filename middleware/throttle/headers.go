package throttle

import (
	"net/http"

	"github.com/chrisShick/Throttle/middleware/throttle/domain"
)

// Annotate escreve os headers de limite, restante e reset.
//
// Roda tanto no allow quanto no deny. Se o mapeamento de nomes não é válido,
// não escreve nada (anotação é best-effort). Reset desconhecido vira "0".
func Annotate(h http.Header, names domain.HeaderNames, dec domain.Decision) {
	if !names.Valid() {
		return
	}

	reset := int64(0)
	if dec.ResetKnown {
		reset = dec.Reset
	}

	h.Set(names[domain.HeaderLimit], formatInt(dec.Limit))
	h.Set(names[domain.HeaderRemaining], formatInt(max(dec.Remaining, 0)))
	h.Set(names[domain.HeaderReset], formatInt64(reset))
}
