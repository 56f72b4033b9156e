// internal/core/domain/discovery.go
package domain

import (
	"time"
)

// DiscoveryStatus es el estado de un subdominio dentro de la cola de discovery.
type DiscoveryStatus string

const (
	DiscoveryStatusDiscovered DiscoveryStatus = "discovered"
	DiscoveryStatusProcessing DiscoveryStatus = "processing"
	DiscoveryStatusDone       DiscoveryStatus = "done"
)

// DiscoveryEntry registra la primera aparición de un subdominio y acumula
// las fuentes que lo reportaron. Una entrada nunca se elimina durante un run;
// el registro completo se descarta al construir el siguiente análisis.
type DiscoveryEntry struct {
	// Name es el hostname normalizado (lowercase, sin punto final)
	Name string

	// Sources acumula las fuentes con semántica de set: la misma fuente
	// reportada dos veces no duplica.
	Sources []string

	// Status dentro de la cola
	Status DiscoveryStatus

	// DiscoveredAt timestamp de la primera aparición
	DiscoveredAt time.Time
}

// NewDiscoveryEntry crea una entrada para la primera aparición de name.
func NewDiscoveryEntry(name, source string) *DiscoveryEntry {
	return &DiscoveryEntry{
		Name:         name,
		Sources:      []string{source},
		Status:       DiscoveryStatusDiscovered,
		DiscoveredAt: time.Now(),
	}
}

// AddSource añade una fuente sin duplicados.
func (e *DiscoveryEntry) AddSource(source string) {
	if source == "" {
		return
	}
	for _, s := range e.Sources {
		if s == source {
			return
		}
	}
	e.Sources = append(e.Sources, source)
}

// HasSource reporta si la fuente ya está registrada.
func (e *DiscoveryEntry) HasSource(source string) bool {
	for _, s := range e.Sources {
		if s == source {
			return true
		}
	}
	return false
}
