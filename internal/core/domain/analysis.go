// internal/core/domain/analysis.go
package domain

import (
	"time"
)

// AnalysisStatus es el estado terminal de la resolución de un subdominio.
//
// Máquina de estados por subdominio:
//
//	discovered -> resolving -> {redirect | historical | active | error} -> completed
type AnalysisStatus string

const (
	// AnalysisStatusResolving indica resolución en curso
	AnalysisStatusResolving AnalysisStatus = "resolving"

	// AnalysisStatusActive indica que el subdominio resuelve con registros reales
	AnalysisStatusActive AnalysisStatus = "active"

	// AnalysisStatusHistorical indica que no existe ni A ni CNAME: el nombre
	// sólo aparece en logs de certificados
	AnalysisStatusHistorical AnalysisStatus = "historical"

	// AnalysisStatusRedirect indica que la cadena CNAME termina en el dominio
	// principal analizado (sirve contenido idéntico)
	AnalysisStatusRedirect AnalysisStatus = "redirect"

	// AnalysisStatusError indica que un paso de resolución falló; el subdominio
	// se completa igualmente con el error embebido, nunca se descarta
	AnalysisStatusError AnalysisStatus = "error"
)

// ServiceRef identifica un servicio/vendor clasificado por pattern matching.
type ServiceRef struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

// VendorInfo es el resultado de clasificar la organización dueña de una IP.
type VendorInfo struct {
	Vendor   string `json:"vendor"`
	Category string `json:"category"`
}

// ASNInfo es el registro normalizado de una consulta de geolocalización/ASN.
// Nunca es nil para un lookup realizado: si todos los providers fallan se
// produce un registro "Unknown" completo.
type ASNInfo struct {
	ASN         string  `json:"asn"`
	ISP         string  `json:"isp"`
	Country     string  `json:"country"`
	CountryName string  `json:"country_name"`
	Region      string  `json:"region"`
	City        string  `json:"city"`
	Lat         float64 `json:"lat,omitempty"`
	Lon         float64 `json:"lon,omitempty"`
}

// UnknownASNInfo retorna el registro que reciben los callers cuando ningún
// provider entregó datos utilizables.
func UnknownASNInfo() *ASNInfo {
	return &ASNInfo{
		ASN:         "Unknown",
		ISP:         "Unknown",
		Country:     "Unknown",
		CountryName: "Unknown",
		Region:      "Unknown",
		City:        "Unknown",
	}
}

// IsUnknown reporta si el registro no contiene datos de organización.
func (a *ASNInfo) IsUnknown() bool {
	return a == nil || a.ISP == "" || a.ISP == "Unknown"
}

// TakeoverRisk clasifica la severidad de un hallazgo de takeover.
type TakeoverRisk string

const (
	TakeoverRiskHigh   TakeoverRisk = "high"
	TakeoverRiskMedium TakeoverRisk = "medium"
	TakeoverRiskLow    TakeoverRisk = "low"
)

// TakeoverFinding se produce cuando el destino de un CNAME no resuelve
// (dangling CNAME). Es una señal heurística fuerte, no prueba de explotabilidad.
type TakeoverFinding struct {
	Subdomain   string       `json:"subdomain"`
	CNAME       string       `json:"cname"`
	Risk        TakeoverRisk `json:"risk"`
	Description string       `json:"description"`
}

// SubdomainAnalysis es el registro de análisis de un subdominio descubierto.
// Se crea una única vez cuando el orchestrator lo saca de la cola; es inmutable
// una vez escrito salvo el enriquecimiento de vendor, que se completa en un
// pase posterior cuando se conoce la IP, siempre sobre el mismo registro,
// nunca sobre una copia.
type SubdomainAnalysis struct {
	Subdomain        string                     `json:"subdomain"`
	Records          map[RecordType][]DNSRecord `json:"records"`
	IP               string                     `json:"ip,omitempty"`
	CNAMEChain       []CNAMELink                `json:"cname_chain,omitempty"`
	PrimaryService   *ServiceRef                `json:"primary_service,omitempty"`
	Infrastructure   *ServiceRef                `json:"infrastructure,omitempty"`
	Vendor           VendorInfo                 `json:"vendor"`
	ASN              *ASNInfo                   `json:"asn,omitempty"`
	Takeover         *TakeoverFinding           `json:"takeover,omitempty"`
	IsRedirectToMain bool                       `json:"is_redirect_to_main"`
	Status           AnalysisStatus             `json:"status"`
	Error            string                     `json:"error,omitempty"`
	Sources          []string                   `json:"sources"`
	AnalyzedAt       time.Time                  `json:"analyzed_at"`
}

// NewSubdomainAnalysis crea el registro en estado resolving.
func NewSubdomainAnalysis(subdomain string, sources []string) *SubdomainAnalysis {
	return &SubdomainAnalysis{
		Subdomain:  subdomain,
		Records:    make(map[RecordType][]DNSRecord),
		Status:     AnalysisStatusResolving,
		Sources:    append([]string{}, sources...),
		AnalyzedAt: time.Now(),
	}
}

// AddRecords registra los answers de un tipo dado.
func (s *SubdomainAnalysis) AddRecords(t RecordType, records []DNSRecord) {
	if len(records) == 0 {
		return
	}
	s.Records[t] = append(s.Records[t], records...)
}

// HasRecords reporta si existe al menos un registro del tipo dado.
func (s *SubdomainAnalysis) HasRecords(t RecordType) bool {
	return len(s.Records[t]) > 0
}

// FirstCNAME retorna el destino del primer registro CNAME, si existe.
func (s *SubdomainAnalysis) FirstCNAME() (string, bool) {
	recs := s.Records[RecordTypeCNAME]
	if len(recs) == 0 {
		return "", false
	}
	return recs[0].Value, true
}

// AllRecords aplana el mapa de registros en una lista.
func (s *SubdomainAnalysis) AllRecords() []DNSRecord {
	out := make([]DNSRecord, 0)
	for _, recs := range s.Records {
		out = append(out, recs...)
	}
	return out
}
