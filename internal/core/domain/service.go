// internal/core/domain/service.go
package domain

// Categorías de servicio producidas por los clasificadores.
const (
	CategoryCloud          = "cloud"
	CategoryCDN            = "cdn"
	CategoryInfrastructure = "infrastructure"
	CategoryHosting        = "hosting"
	CategorySaaS           = "saas"
	CategoryEmail          = "email"
	CategoryDNS            = "dns"
	CategoryOther          = "Other"
)

// vendorServices es el conjunto fijo de plataformas cloud cuya identidad en la
// consolidación es sólo el nombre: todas las apariciones de "AWS" acumulan en
// una única entrada aunque lleguen con categorías distintas.
var vendorServices = map[string]bool{
	"AWS":             true,
	"AWS CloudFront":  true,
	"Google Cloud":    true,
	"Microsoft Azure": true,
	"Cloudflare":      true,
	"Akamai":          true,
	"Fastly":          true,
}

// IsVendorService reporta si el nombre pertenece al conjunto fijo de vendors.
func IsVendorService(name string) bool {
	return vendorServices[name]
}

// ServiceEntry consolida un servicio de terceros detectado durante el análisis.
// Invariante: una key dada mapea a exactamente una ServiceEntry por run; todos
// los registros y subdominios que la referencian acumulan en ella.
type ServiceEntry struct {
	Name             string      `json:"name"`
	Category         string      `json:"category"`
	Description      string      `json:"description,omitempty"`
	Records          []DNSRecord `json:"records"`
	RecordTypes      []string    `json:"record_types"`
	SourceSubdomains []string    `json:"source_subdomains"`
	Infrastructure   *ServiceRef `json:"infrastructure,omitempty"`
}

// ServiceKey computa la identidad de consolidación: el nombre solo para el
// conjunto fijo de vendors, nombre+categoría para el resto.
func ServiceKey(name, category string) string {
	if IsVendorService(name) {
		return name
	}
	return name + "|" + category
}

// NewServiceEntry crea una entrada vacía de servicio.
func NewServiceEntry(name, category, description string) *ServiceEntry {
	return &ServiceEntry{
		Name:             name,
		Category:         category,
		Description:      description,
		Records:          []DNSRecord{},
		RecordTypes:      []string{},
		SourceSubdomains: []string{},
	}
}

// Key retorna la identidad de consolidación de esta entrada.
func (s *ServiceEntry) Key() string {
	return ServiceKey(s.Name, s.Category)
}

// AddSourceSubdomain añade un subdominio origen con semántica de set.
func (s *ServiceEntry) AddSourceSubdomain(subdomain string) {
	for _, existing := range s.SourceSubdomains {
		if existing == subdomain {
			return
		}
	}
	s.SourceSubdomains = append(s.SourceSubdomains, subdomain)
}

// AddRecordType añade una etiqueta de tipo con semántica de set.
func (s *ServiceEntry) AddRecordType(t string) {
	for _, existing := range s.RecordTypes {
		if existing == t {
			return
		}
	}
	s.RecordTypes = append(s.RecordTypes, t)
}

// AddRecords une registros evitando duplicados exactos.
func (s *ServiceEntry) AddRecords(records []DNSRecord) {
	for _, r := range records {
		if s.hasRecord(r) {
			continue
		}
		s.Records = append(s.Records, r)
		s.AddRecordType(string(r.Type))
	}
}

func (s *ServiceEntry) hasRecord(r DNSRecord) bool {
	for _, existing := range s.Records {
		if existing.Type == r.Type && existing.Name == r.Name && existing.Value == r.Value {
			return true
		}
	}
	return false
}
