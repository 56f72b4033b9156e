// internal/dnsx/takeover.go
package dnsx

import (
	"context"
	"fmt"
	"math/rand"

	"infrascope/internal/core/domain"
)

// CheckTakeover evalúa si el destino final de una cadena CNAME está colgando
// (dangling CNAME): un destino que no resuelve a ninguna IP puede ser
// reclamado por un tercero. Señal heurística fuerte, no prueba de
// explotabilidad.
//
// Retorna nil cuando no hay cadena o cuando el destino resuelve.
func (w *Walker) CheckTakeover(ctx context.Context, subdomain string, chain []domain.CNAMELink) *domain.TakeoverFinding {
	if len(chain) == 0 {
		return nil
	}
	target := chain[len(chain)-1].To

	records := w.resolver.Query(ctx, target, domain.RecordTypeA)
	if records == nil {
		// Transporte agotado: no se pudo confirmar, señal débil.
		return &domain.TakeoverFinding{
			Subdomain:   subdomain,
			CNAME:       target,
			Risk:        domain.TakeoverRiskMedium,
			Description: fmt.Sprintf("CNAME target %s could not be verified (all resolvers failed)", target),
		}
	}
	if len(FilterType(records, domain.RecordTypeA)) > 0 {
		return nil
	}

	return &domain.TakeoverFinding{
		Subdomain:   subdomain,
		CNAME:       target,
		Risk:        domain.TakeoverRiskHigh,
		Description: fmt.Sprintf("dangling CNAME: %s points to %s which does not resolve", subdomain, target),
	}
}

// alphabet para labels nonce de detección de wildcard.
const nonceAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// DetectWildcard resuelve un label aleatorio bajo el dominio. Si resuelve,
// el dominio tiene DNS wildcard y las señales de "activo"/"takeover" de sus
// subdominios pierden valor.
func (w *Walker) DetectWildcard(ctx context.Context, apex string) bool {
	nonce := make([]byte, 12)
	for i := range nonce {
		nonce[i] = nonceAlphabet[rand.Intn(len(nonceAlphabet))]
	}
	probe := fmt.Sprintf("%s.%s", string(nonce), apex)

	records := w.resolver.Query(ctx, probe, domain.RecordTypeA)
	return len(FilterType(records, domain.RecordTypeA)) > 0
}
