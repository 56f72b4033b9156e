// internal/core/ports/source.go
package ports

import (
	"context"
	"time"

	"infrascope/internal/core/domain"
)

// Source es el port primario para las fuentes de discovery (motores de
// certificate transparency, feeds de passive DNS). Cada fuente consulta una
// API externa independiente y produce candidatos para la cola de discovery.
type Source interface {
	// Name retorna el nombre único de la fuente (ej: "crtsh", "otx")
	Name() string

	// Run ejecuta la fuente contra el target y retorna los candidatos
	Run(ctx context.Context, target domain.Target) (*SourceResult, error)

	// Close libera recursos utilizados por la fuente
	Close() error
}

// Candidate es un hostname candidato reportado por una fuente, con la
// información de certificado que la fuente pueda aportar.
type Candidate struct {
	Name string
	Cert *domain.CertificateInfo
}

// SourceResult agrupa los candidatos producidos por una fuente.
type SourceResult struct {
	Source     string
	Candidates []Candidate
	Warnings   []string
}

// NewSourceResult crea un resultado vacío para la fuente.
func NewSourceResult(source string) *SourceResult {
	return &SourceResult{Source: source}
}

// AddCandidate añade un candidato al resultado.
func (r *SourceResult) AddCandidate(name string, cert *domain.CertificateInfo) {
	r.Candidates = append(r.Candidates, Candidate{Name: name, Cert: cert})
}

// AddWarning registra una advertencia no fatal de la fuente.
func (r *SourceResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// SourceConfig contiene la configuración específica de una fuente.
type SourceConfig struct {
	// Enabled indica si la fuente está habilitada
	Enabled bool

	// Timeout tiempo máximo de ejecución de una pasada
	Timeout time.Duration

	// Retries número de reintentos en caso de fallo
	Retries int

	// RateLimit máximo de requests dentro de RateWindow (0 = sin límite)
	RateLimit int

	// RateWindow ventana deslizante para RateLimit
	RateWindow time.Duration

	// Priority prioridad de ejecución (mayor = más prioritario)
	Priority int

	// Custom configuración específica de la fuente (API keys, etc.)
	Custom map[string]string
}

// DefaultSourceConfig retorna una configuración por defecto.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		Enabled:    true,
		Timeout:    30 * time.Second,
		Retries:    2,
		RateLimit:  0,
		RateWindow: time.Second,
		Priority:   0,
		Custom:     make(map[string]string),
	}
}

// SourceMetadata contiene metadatos sobre una fuente registrada.
type SourceMetadata struct {
	Name         string
	Description  string
	RequiresAuth bool
	Priority     int
}
