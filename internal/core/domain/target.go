// internal/core/domain/target.go
package domain

import (
	"fmt"

	"golang.org/x/net/publicsuffix"

	"infrascope/internal/platform/validator"
)

// Target representa el dominio objetivo del análisis.
type Target struct {
	// Root es el dominio raíz objetivo
	Root string

	// ExcludeDomains lista de dominios a excluir del scope
	ExcludeDomains []string
}

// NewTarget crea un nuevo target.
func NewTarget(root string) *Target {
	return &Target{
		Root:           validator.NormalizeHostname(root),
		ExcludeDomains: []string{},
	}
}

// Validate verifica que el target sea válido y lo normaliza.
func (t *Target) Validate() error {
	if t.Root == "" {
		return ErrEmptyTarget
	}
	t.Root = validator.NormalizeHostname(t.Root)
	if !validator.IsHostname(t.Root) {
		return fmt.Errorf("%w: %s", ErrInvalidDomain, t.Root)
	}
	return nil
}

// IsInScope verifica si un hostname pertenece al target: el dominio raíz o un
// subdominio suyo, no excluido y no wildcard.
func (t *Target) IsInScope(host string) bool {
	host = validator.NormalizeHostname(host)
	if host == "" || validator.IsWildcard(host) {
		return false
	}
	for _, excluded := range t.ExcludeDomains {
		if validator.IsSubdomainOf(host, excluded) {
			return false
		}
	}
	return validator.IsSubdomainOf(host, t.Root)
}

// RegisteredDomain retorna el eTLD+1 del root usando la public suffix list.
// Se usa para detectar redirects al dominio principal: un CNAME que termina
// en el mismo dominio registrado sirve contenido idéntico.
func (t *Target) RegisteredDomain() string {
	etld1, err := publicsuffix.EffectiveTLDPlusOne(t.Root)
	if err != nil {
		// Fallback para dominios no listados (localhost, TLDs internos)
		return t.Root
	}
	return etld1
}

// IsMainDomain reporta si host es el propio dominio analizado (mismo eTLD+1
// como apex o www).
func (t *Target) IsMainDomain(host string) bool {
	host = validator.NormalizeHostname(host)
	main := t.RegisteredDomain()
	return host == main || host == "www."+main || host == t.Root
}
