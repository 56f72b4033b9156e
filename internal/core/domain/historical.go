// internal/core/domain/historical.go
package domain

import (
	"time"
)

// CertificateInfo es la información de certificado asociada a un nombre visto
// en logs de certificate transparency.
type CertificateInfo struct {
	Issuer        string `json:"issuer"`
	NotBefore     string `json:"not_before"`
	NotAfter      string `json:"not_after"`
	CertificateID string `json:"certificate_id,omitempty"`
}

// trustedCTSources son fuentes cuyo dato de certificado pesa más en el score
// de completitud al deduplicar.
var trustedCTSources = map[string]bool{
	"crtsh":       true,
	"certspotter": true,
}

// HistoricalRecord representa un nombre presente en logs CT sin DNS activo
// resoluble. La clave de dedup es el nombre del subdominio; en colisión gana
// el registro con mayor score de completitud, no el orden de inserción.
type HistoricalRecord struct {
	Subdomain       string          `json:"subdomain"`
	Source          string          `json:"source"`
	CertificateInfo CertificateInfo `json:"certificate_info"`
	DiscoveredAt    time.Time       `json:"discovered_at"`
}

// NewHistoricalRecord crea un registro histórico.
func NewHistoricalRecord(subdomain, source string, cert CertificateInfo) *HistoricalRecord {
	return &HistoricalRecord{
		Subdomain:       subdomain,
		Source:          source,
		CertificateInfo: cert,
		DiscoveredAt:    time.Now(),
	}
}

// CompletenessScore puntúa cuánta información aporta el registro: issuer
// conocido, fechas de validez presentes y fuente confiable suman puntos.
func (h *HistoricalRecord) CompletenessScore() int {
	score := 0
	if h.CertificateInfo.Issuer != "" && h.CertificateInfo.Issuer != "Unknown" {
		score += 3
	}
	if h.CertificateInfo.NotAfter != "" {
		score += 2
	}
	if h.CertificateInfo.NotBefore != "" {
		score++
	}
	if h.CertificateInfo.CertificateID != "" {
		score++
	}
	if trustedCTSources[h.Source] {
		score++
	}
	return score
}
