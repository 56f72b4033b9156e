// internal/core/domain/result.go
package domain

import (
	"time"
)

// SourceOutcome resume cómo terminó cada fuente de discovery en la Fase 1.
type SourceOutcome string

const (
	SourceOutcomeSucceeded SourceOutcome = "succeeded"
	SourceOutcomeFailed    SourceOutcome = "failed"
	SourceOutcomeTimedOut  SourceOutcome = "timed_out"
)

// AnalysisStats es el snapshot de cola/estadísticas expuesto a los consumers.
type AnalysisStats struct {
	Discovered int `json:"discovered"`
	Processed  int `json:"processed"`
	Remaining  int `json:"remaining"`
	Total      int `json:"total"`

	// DNSQueries cuenta los intentos de query DoH emitidos durante el run
	DNSQueries int `json:"dns_queries"`

	// SourceOutcomes resultado por fuente de discovery
	SourceOutcomes map[string]SourceOutcome `json:"source_outcomes,omitempty"`
}

// Warning representa una advertencia no crítica durante el análisis.
type Warning struct {
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Error representa un error ocurrido durante el análisis.
type Error struct {
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Fatal     bool      `json:"fatal"`
	Timestamp time.Time `json:"timestamp"`
}

// AnalysisResult es el resultado consolidado de un run completo. El
// Consolidator es el único dueño de las colecciones Services/Subdomains;
// los consumers las leen, no las mutan.
type AnalysisResult struct {
	Domain     string                        `json:"domain"`
	Services   map[string]*ServiceEntry      `json:"services"`
	Subdomains map[string]*SubdomainAnalysis `json:"subdomains"`
	Historical []*HistoricalRecord           `json:"historical_records"`
	Takeovers  []*TakeoverFinding            `json:"takeovers,omitempty"`
	Posture    []PostureFinding              `json:"posture,omitempty"`
	Stats      AnalysisStats                 `json:"stats"`
	Warnings   []Warning                     `json:"warnings,omitempty"`
	Errors     []Error                       `json:"errors,omitempty"`

	// Partial indica que el run terminó por timeout global con resultados
	// parciales (degradación controlada, no un fallo)
	Partial bool `json:"partial,omitempty"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// PostureFinding reporta un gap de seguridad DNS/email del dominio apex
// (SPF/DMARC ausentes, wildcard DNS).
type PostureFinding struct {
	Kind        string `json:"kind"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// NewAnalysisResult crea un resultado vacío para el dominio.
func NewAnalysisResult(domain string) *AnalysisResult {
	return &AnalysisResult{
		Domain:     domain,
		Services:   make(map[string]*ServiceEntry),
		Subdomains: make(map[string]*SubdomainAnalysis),
		Historical: []*HistoricalRecord{},
		Stats: AnalysisStats{
			SourceOutcomes: make(map[string]SourceOutcome),
		},
		StartTime: time.Now(),
	}
}

// AddWarning añade una advertencia al resultado.
func (r *AnalysisResult) AddWarning(source, message string) {
	r.Warnings = append(r.Warnings, Warning{
		Source:    source,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// AddError añade un error al resultado.
func (r *AnalysisResult) AddError(source, message string, fatal bool) {
	r.Errors = append(r.Errors, Error{
		Source:    source,
		Message:   message,
		Fatal:     fatal,
		Timestamp: time.Now(),
	})
}

// Finalize sella el resultado calculando duración.
func (r *AnalysisResult) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}
