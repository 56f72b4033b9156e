// internal/core/ports/exporter.go
package ports

import (
	"io"

	"infrascope/internal/core/domain"
)

// Exporter es el port para exportar el resultado consolidado.
type Exporter interface {
	// Name retorna el nombre del exporter (ej: "json", "table")
	Name() string

	// Export escribe el resultado en el writer dado
	Export(result *domain.AnalysisResult, w io.Writer) error
}

