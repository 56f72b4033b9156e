// internal/core/ports/observer.go
package ports

import (
	"infrascope/internal/core/domain"
)

// Observer recibe eventos del pipeline de análisis. Reemplaza el patrón de
// array de callbacks: el orchestrator notifica a través de esta interfaz y
// aísla los fallos de cada suscriptor, de modo que un observer roto no puede
// tragarse errores de otro ni detener el drain.
//
// Las notificaciones de la Fase 2 son síncronas y en orden de cola (orden de
// discovery): los efectos de cada subdominio completado se observan antes de
// que empiece la resolución del siguiente.
type Observer interface {
	// OnSubdomainCompleted se invoca cuando un subdominio termina su análisis.
	OnSubdomainCompleted(name string, sources []string, analysis *domain.SubdomainAnalysis)

	// OnStatsUpdated entrega el snapshot de progreso tras cada cambio de cola.
	OnStatsUpdated(stats domain.AnalysisStats)

	// OnSourceFinished se invoca cuando una fuente de Fase 1 termina.
	OnSourceFinished(source string, outcome domain.SourceOutcome, candidates int)
}

// NoopObserver implementa Observer sin hacer nada. Útil como embedding para
// observers que sólo necesitan parte de los eventos.
type NoopObserver struct{}

func (NoopObserver) OnSubdomainCompleted(string, []string, *domain.SubdomainAnalysis) {}
func (NoopObserver) OnStatsUpdated(domain.AnalysisStats)                              {}
func (NoopObserver) OnSourceFinished(string, domain.SourceOutcome, int)               {}
