// internal/platform/validator/validator.go
package validator

import (
	"net"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

var hostnameRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?$`)

// IsHostname verifica si un string es un hostname válido.
// Soporta dominios internacionales (IDN) vía punycode.
func IsHostname(host string) bool {
	if len(host) == 0 || len(host) > 253 {
		return false
	}
	// Los name_value de CT logs pueden traer varios nombres separados por \n;
	// un hostname individual nunca contiene saltos de línea ni espacios.
	if strings.ContainsAny(host, "\n\r\t ") {
		return false
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return false
	}
	if !hostnameRegex.MatchString(ascii) {
		return false
	}
	// Un hostname no es una IP
	return net.ParseIP(ascii) == nil
}

// NormalizeHostname normaliza un hostname a su forma canónica ASCII.
func NormalizeHostname(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimSuffix(host, ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}

// IsWildcard reporta si el candidato es una entrada wildcard de CT log (*.example.com).
func IsWildcard(host string) bool {
	return strings.HasPrefix(host, "*.")
}

// IsSubdomainOf verifica si host es el dominio base o un subdominio suyo.
func IsSubdomainOf(host, base string) bool {
	host = NormalizeHostname(host)
	base = NormalizeHostname(base)
	if host == "" || base == "" {
		return false
	}
	return host == base || strings.HasSuffix(host, "."+base)
}

// IsIP verifica si un string es una dirección IP válida (v4 o v6).
func IsIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

// IsIPv4 verifica si un string es una dirección IPv4 válida.
func IsIPv4(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.To4() != nil
}
