// internal/adapters/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"infrascope/internal/core/domain"
)

// JSONExporter escribe el resultado consolidado como un único documento JSON.
type JSONExporter struct {
	Pretty bool
}

// Name retorna el nombre del exporter.
func (e *JSONExporter) Name() string {
	return "json"
}

// Export escribe el resultado en el writer dado.
func (e *JSONExporter) Export(result *domain.AnalysisResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// sanitizeDomainName convierte un nombre de dominio en un nombre de carpeta
// válido. Ejemplo: "example.com" -> "example_com"
func sanitizeDomainName(domain string) string {
	sanitized := strings.ReplaceAll(domain, ".", "_")
	sanitized = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, sanitized)
	return sanitized
}

// WriteJSONFile exporta el resultado a un archivo con timestamp dentro de un
// subdirectorio por dominio.
func WriteJSONFile(dir string, result *domain.AnalysisResult) (string, error) {
	if dir == "" {
		dir = "."
	}
	fullDir := filepath.Join(dir, sanitizeDomainName(result.Domain))
	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("infrascope_%s_%s.json", result.Domain, timestamp)
	path := filepath.Join(fullDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	exporter := &JSONExporter{Pretty: true}
	if err := exporter.Export(result, f); err != nil {
		return "", err
	}
	return path, nil
}
