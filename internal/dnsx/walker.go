// internal/dnsx/walker.go
package dnsx

import (
	"context"

	"infrascope/internal/core/domain"
	"infrascope/internal/platform/logx"
	"infrascope/internal/platform/validator"
)

// Walker sigue cadenas de delegación CNAME hasta un límite de saltos.
type Walker struct {
	resolver *Resolver
	maxHops  int
	logger   logx.Logger
}

// NewWalker crea un walker sobre el resolver dado.
func NewWalker(resolver *Resolver, logger logx.Logger) *Walker {
	return &Walker{
		resolver: resolver,
		maxHops:  domain.MaxCNAMEHops,
		logger:   logger.With("component", "cname-walker"),
	}
}

// FollowChain resuelve iterativamente la cadena CNAME de hostname. Se detiene
// cuando el server no devuelve CNAME, al alcanzar el límite de saltos o ante
// un error de transporte, retornando la cadena reunida hasta ese punto
// (posiblemente vacía, no es un error). Las cadenas cíclicas terminan en el
// límite de saltos como muy tarde; el set de visitados corta antes.
func (w *Walker) FollowChain(ctx context.Context, hostname string) []domain.CNAMELink {
	chain := make([]domain.CNAMELink, 0)
	current := validator.NormalizeHostname(hostname)
	seen := map[string]bool{current: true}

	for hop := 0; hop < w.maxHops; hop++ {
		records := w.resolver.Query(ctx, current, domain.RecordTypeCNAME)
		if records == nil {
			// Transporte agotado: devolver lo reunido hasta ahora.
			w.logger.Debug("chain walk stopped on resolver failure", "host", current, "hops", hop)
			return chain
		}

		cnames := FilterType(records, domain.RecordTypeCNAME)
		next := ""
		for _, rec := range cnames {
			if validator.NormalizeHostname(rec.Name) == current {
				next = validator.NormalizeHostname(rec.Value)
				chain = append(chain, domain.CNAMELink{From: current, To: next, TTL: rec.TTL})
				break
			}
		}
		if next == "" {
			// Respuesta con CNAMEs de otros nombres (cadena aplanada de un
			// query previo): tomar el primero disponible.
			if len(cnames) > 0 && len(chain) == 0 {
				next = validator.NormalizeHostname(cnames[0].Value)
				chain = append(chain, domain.CNAMELink{From: current, To: next, TTL: cnames[0].TTL})
			} else {
				return chain
			}
		}

		if seen[next] {
			w.logger.Warn("CNAME cycle detected", "host", hostname, "at", next)
			return chain
		}
		seen[next] = true
		current = next
	}

	w.logger.Debug("chain walk reached hop bound", "host", hostname, "hops", w.maxHops)
	return chain
}
