// internal/dnsx/servers.go
package dnsx

import (
	"fmt"
	"net/url"
)

// Server describe un endpoint DNS-over-HTTPS. Los servers primarios se
// consultan en orden; los backups sólo cuando todos los primarios fallan
// a nivel de transporte.
type Server struct {
	// Name identifica el provider en logs ("google", "cloudflare")
	Name string

	// BaseURL endpoint de resolución JSON del provider
	BaseURL string

	// Primary indica si pertenece a la lista primaria
	Primary bool
}

// QueryURL construye la URL de query para un nombre y tipo. Todos los
// providers soportados aceptan la forma ?name=&type=&do=true.
func (s Server) QueryURL(name, recordType string) string {
	return fmt.Sprintf("%s?name=%s&type=%s&do=true",
		s.BaseURL, url.QueryEscape(name), url.QueryEscape(recordType))
}

// DefaultServers retorna la lista por defecto: Google y Cloudflare como
// primarios, Quad9 como backup.
func DefaultServers() []Server {
	return []Server{
		{Name: "google", BaseURL: "https://dns.google/resolve", Primary: true},
		{Name: "cloudflare", BaseURL: "https://cloudflare-dns.com/dns-query", Primary: true},
		{Name: "quad9", BaseURL: "https://dns.quad9.net:5053/dns-query", Primary: false},
	}
}
