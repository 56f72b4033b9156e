// internal/core/usecases/consolidator.go
package usecases

import (
	"infrascope/internal/core/domain"
)

// Section es el bucket de reporte al que pertenece un subdominio. Cada
// subdominio pertenece exactamente a una sección según la prioridad fija
// vendor > historical > unknown-con-IP > sólo-CNAME.
type Section string

const (
	SectionVendor     Section = "vendor"
	SectionHistorical Section = "historical"
	SectionUnknownIP  Section = "unknown_ip"
	SectionCNAMEOnly  Section = "cname_only"
	SectionUnresolved Section = "unresolved"
)

// Consolidator es el único dueño de las colecciones Services/Subdomains del
// resultado. Lee los SubdomainAnalysis producidos por el orchestrator y
// acumula; nunca los muta.
type Consolidator struct {
	result *domain.AnalysisResult
}

// NewConsolidator crea un consolidator para el dominio dado.
func NewConsolidator(targetDomain string) *Consolidator {
	return &Consolidator{result: domain.NewAnalysisResult(targetDomain)}
}

// MergeService acumula un servicio detectado bajo su clave de consolidación.
// Todas las apariciones de la misma clave caen en la misma entrada: se unen
// subdominios origen, registros y etiquetas de tipo. Regla especial para el
// conjunto fijo de vendors: una clasificación "cloud" nueva sobre una entrada
// "infrastructure" existente sube la categoría, porque la clasificación más
// específica gana.
func (c *Consolidator) MergeService(ref *domain.ServiceRef, records []domain.DNSRecord, infrastructure *domain.ServiceRef, sourceSubdomain string) *domain.ServiceEntry {
	key := domain.ServiceKey(ref.Name, ref.Category)

	entry, exists := c.result.Services[key]
	if !exists {
		entry = domain.NewServiceEntry(ref.Name, ref.Category, ref.Description)
		c.result.Services[key] = entry
	}

	if domain.IsVendorService(ref.Name) &&
		ref.Category == domain.CategoryCloud &&
		entry.Category == domain.CategoryInfrastructure {
		entry.Category = domain.CategoryCloud
	}

	entry.AddSourceSubdomain(sourceSubdomain)
	entry.AddRecords(records)
	if entry.Infrastructure == nil && infrastructure != nil {
		entry.Infrastructure = infrastructure
	}
	return entry
}

// MergeSubdomain incorpora un análisis al resultado. Una actualización nunca
// descarta información ya aprendida (cadena CNAME, vendor, takeover) a favor
// de una versión menos informativa.
func (c *Consolidator) MergeSubdomain(analysis *domain.SubdomainAnalysis) {
	existing, ok := c.result.Subdomains[analysis.Subdomain]
	if !ok {
		c.result.Subdomains[analysis.Subdomain] = analysis
		return
	}

	if existing.IP == "" {
		existing.IP = analysis.IP
	}
	if len(existing.CNAMEChain) == 0 {
		existing.CNAMEChain = analysis.CNAMEChain
	}
	if existing.PrimaryService == nil {
		existing.PrimaryService = analysis.PrimaryService
	}
	if existing.Infrastructure == nil {
		existing.Infrastructure = analysis.Infrastructure
	}
	if existing.Vendor.Vendor == "" || existing.Vendor.Vendor == "Unknown" {
		existing.Vendor = analysis.Vendor
	}
	if existing.ASN == nil || existing.ASN.IsUnknown() {
		existing.ASN = analysis.ASN
	}
	if existing.Takeover == nil {
		existing.Takeover = analysis.Takeover
	}
	for t, recs := range analysis.Records {
		existing.AddRecords(t, recs)
	}
	for _, src := range analysis.Sources {
		existing.Sources = appendUnique(existing.Sources, src)
	}
}

// MergeHistorical deduplica registros históricos por nombre de subdominio.
// En colisión gana el registro con mayor score de completitud; el orden de
// inserción no decide.
func (c *Consolidator) MergeHistorical(record *domain.HistoricalRecord) {
	for i, existing := range c.result.Historical {
		if existing.Subdomain != record.Subdomain {
			continue
		}
		if record.CompletenessScore() > existing.CompletenessScore() {
			c.result.Historical[i] = record
		}
		return
	}
	c.result.Historical = append(c.result.Historical, record)
}

// AddTakeover registra un hallazgo de takeover en el resultado.
func (c *Consolidator) AddTakeover(finding *domain.TakeoverFinding) {
	c.result.Takeovers = append(c.result.Takeovers, finding)
}

// AddPosture registra un hallazgo de postura del dominio apex.
func (c *Consolidator) AddPosture(finding domain.PostureFinding) {
	c.result.Posture = append(c.result.Posture, finding)
}

// SectionFor asigna un subdominio a exactamente un bucket de reporte por
// prioridad fija. Es idempotente: depende sólo del estado del análisis.
func SectionFor(a *domain.SubdomainAnalysis) Section {
	switch {
	case a.PrimaryService != nil || a.Infrastructure != nil ||
		(a.Vendor.Vendor != "" && a.Vendor.Vendor != "Unknown" && a.Vendor.Category != domain.CategoryOther):
		return SectionVendor
	case a.Status == domain.AnalysisStatusHistorical:
		return SectionHistorical
	case a.IP != "":
		return SectionUnknownIP
	case len(a.CNAMEChain) > 0 || a.HasRecords(domain.RecordTypeCNAME):
		return SectionCNAMEOnly
	default:
		return SectionUnresolved
	}
}

// Sections agrupa los subdominios del resultado por bucket. La pertenencia es
// única: un subdominio que estructuralmente encaja en más de un bucket cae en
// el de mayor prioridad y en ningún otro.
func (c *Consolidator) Sections() map[Section][]string {
	out := make(map[Section][]string)
	for name, analysis := range c.result.Subdomains {
		section := SectionFor(analysis)
		out[section] = append(out[section], name)
	}
	return out
}

// Result retorna el resultado consolidado.
func (c *Consolidator) Result() *domain.AnalysisResult {
	return c.result
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
