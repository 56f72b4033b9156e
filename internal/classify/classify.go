// internal/classify/classify.go
//
// Funciones puras de clasificación por pattern matching. Sin estado, sin I/O:
// el resolver y el orchestrator deciden qué clasificar, este paquete sólo
// responde "¿quién opera este hostname / esta organización?".
package classify

import (
	"strings"

	"infrascope/internal/core/domain"
)

// Service clasifica un hostname contra la tabla de sufijos conocidos.
// Gana el sufijo más largo que matchee alineado a labels; sin match retorna
// nil.
func Service(hostname string) *domain.ServiceRef {
	hostname = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(hostname), "."))
	if hostname == "" {
		return nil
	}

	var best *Pattern
	for i := range servicePatterns {
		p := &servicePatterns[i]
		if !matchesSuffix(hostname, p.Suffix) {
			continue
		}
		if best == nil || len(p.Suffix) > len(best.Suffix) {
			best = p
		}
	}
	if best == nil {
		return nil
	}
	return &domain.ServiceRef{
		Name:        best.Name,
		Category:    best.Category,
		Description: best.Description,
	}
}

// Chain clasifica una cadena CNAME completa: el servicio primario sale del
// primer salto (quién está "delante" del origen) y la infraestructura del
// último (el sustrato final de hosting). Con un único salto el destino se
// clasifica como ambas cosas.
func Chain(chain []domain.CNAMELink) (primary, infrastructure *domain.ServiceRef) {
	if len(chain) == 0 {
		return nil, nil
	}
	primary = Service(chain[0].To)
	if len(chain) == 1 {
		return primary, primary
	}
	return primary, Service(chain[len(chain)-1].To)
}

// Vendor mapea el registro ASN de una IP a una etiqueta de vendor por match
// case-insensitive de fragmentos sobre el nombre de organización. Sin match
// conocido retorna el string crudo con categoría "Other".
func Vendor(asn *domain.ASNInfo) domain.VendorInfo {
	if asn.IsUnknown() {
		return domain.VendorInfo{Vendor: "Unknown", Category: domain.CategoryOther}
	}

	org := strings.ToLower(asn.ISP)
	for _, f := range vendorFragments {
		if strings.Contains(org, f.Fragment) {
			return domain.VendorInfo{Vendor: f.Vendor, Category: f.Category}
		}
	}
	return domain.VendorInfo{Vendor: asn.ISP, Category: domain.CategoryOther}
}

// matchesSuffix reporta si hostname termina en suffix respetando límites de
// label: "mycloudfront.net" no matchea "cloudfront.net".
func matchesSuffix(hostname, suffix string) bool {
	if hostname == suffix {
		return true
	}
	return strings.HasSuffix(hostname, "."+suffix)
}
