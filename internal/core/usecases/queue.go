// internal/core/usecases/queue.go
package usecases

import (
	"fmt"
	"strings"
	"sync"

	"infrascope/internal/core/domain"
	"infrascope/internal/platform/validator"
)

// DiscoveryQueue es la cola FIFO de subdominios descubiertos. Las fuentes de
// la Fase 1 añaden candidatos de forma concurrente; el drain de la Fase 2 es
// secuencial. Invariante: todo nombre encolado termina completado o queda
// pendiente si el run se aborta, nunca se descarta en silencio.
type DiscoveryQueue struct {
	mu        sync.Mutex
	entries   map[string]*domain.DiscoveryEntry
	pending   []string
	completed map[string]*domain.SubdomainAnalysis
	certs     map[string]*domain.CertificateInfo
	processed int
}

// NewDiscoveryQueue crea una cola vacía.
func NewDiscoveryQueue() *DiscoveryQueue {
	return &DiscoveryQueue{
		entries:   make(map[string]*domain.DiscoveryEntry),
		completed: make(map[string]*domain.SubdomainAnalysis),
		certs:     make(map[string]*domain.CertificateInfo),
	}
}

// Add normaliza y valida un candidato. Un nombre nuevo se encola; uno ya
// visto sólo acumula la fuente, sin re-encolar (idempotente frente a
// discovery duplicado). Los campos name_value de certificate transparency
// pueden traer varios nombres separados por newline; cualquier valor con
// newline embebido se rechaza aquí como malformado.
func (q *DiscoveryQueue) Add(name, source string, cert *domain.CertificateInfo) error {
	if strings.ContainsAny(name, "\n\r") {
		return fmt.Errorf("%w: embedded newline in %q", domain.ErrInvalidCandidate, name)
	}
	normalized := validator.NormalizeHostname(name)
	if normalized == "" || !validator.IsHostname(normalized) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCandidate, name)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if entry, seen := q.entries[normalized]; seen {
		entry.AddSource(source)
		q.mergeCert(normalized, cert)
		return nil
	}

	q.entries[normalized] = domain.NewDiscoveryEntry(normalized, source)
	q.pending = append(q.pending, normalized)
	q.mergeCert(normalized, cert)
	return nil
}

// mergeCert conserva la información de certificado más completa vista para
// un nombre. Caller debe tener el lock.
func (q *DiscoveryQueue) mergeCert(name string, cert *domain.CertificateInfo) {
	if cert == nil {
		return
	}
	existing := q.certs[name]
	if existing == nil || certScore(cert) > certScore(existing) {
		q.certs[name] = cert
	}
}

func certScore(c *domain.CertificateInfo) int {
	score := 0
	if c.Issuer != "" {
		score += 3
	}
	if c.NotAfter != "" {
		score += 2
	}
	if c.NotBefore != "" {
		score++
	}
	if c.CertificateID != "" {
		score++
	}
	return score
}

// Next extrae la siguiente entrada en orden FIFO (orden de discovery) y la
// marca en procesamiento. Retorna ErrQueueEmpty cuando no quedan pendientes.
func (q *DiscoveryQueue) Next() (*domain.DiscoveryEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil, domain.ErrQueueEmpty
	}
	name := q.pending[0]
	q.pending = q.pending[1:]

	entry := q.entries[name]
	entry.Status = domain.DiscoveryStatusProcessing
	return entry, nil
}

// MarkCompleted registra el resultado terminal del análisis de un nombre.
func (q *DiscoveryQueue) MarkCompleted(name string, analysis *domain.SubdomainAnalysis) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if entry, ok := q.entries[name]; ok {
		entry.Status = domain.DiscoveryStatusDone
	}
	q.completed[name] = analysis
	q.processed++
}

// Cert retorna la información de certificado acumulada para un nombre, si
// alguna fuente la aportó.
func (q *DiscoveryQueue) Cert(name string) *domain.CertificateInfo {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.certs[name]
}

// Pending retorna cuántas entradas esperan procesamiento.
func (q *DiscoveryQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Stats retorna el snapshot de progreso de la cola.
func (q *DiscoveryQueue) Stats() domain.AnalysisStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return domain.AnalysisStats{
		Discovered: len(q.entries),
		Processed:  q.processed,
		Remaining:  len(q.pending),
		Total:      len(q.entries),
	}
}
