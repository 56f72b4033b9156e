// internal/core/domain/records.go
package domain

import (
	"fmt"

	"github.com/miekg/dns"
)

// RecordType clasifica un registro DNS por su mnemónico estándar.
type RecordType string

const (
	RecordTypeA     RecordType = "A"
	RecordTypeAAAA  RecordType = "AAAA"
	RecordTypeCNAME RecordType = "CNAME"
	RecordTypeMX    RecordType = "MX"
	RecordTypeTXT   RecordType = "TXT"
	RecordTypeNS    RecordType = "NS"
)

// IsValid verifica que el tipo sea uno de los mnemónicos soportados.
func (t RecordType) IsValid() bool {
	switch t {
	case RecordTypeA, RecordTypeAAAA, RecordTypeCNAME, RecordTypeMX, RecordTypeTXT, RecordTypeNS:
		return true
	}
	return false
}

// Wire retorna el número de tipo DNS on-the-wire para el mnemónico.
// Los endpoints DoH JSON identifican answers por número, no por string.
func (t RecordType) Wire() uint16 {
	return dns.StringToType[string(t)]
}

// RecordTypeFromWire convierte un número de tipo DNS a su mnemónico.
// Tipos fuera del conjunto soportado retornan ok=false y se descartan
// en lugar de propagarse como shapes duck-typed.
func RecordTypeFromWire(code uint16) (RecordType, bool) {
	name, known := dns.TypeToString[code]
	if !known {
		return "", false
	}
	t := RecordType(name)
	return t, t.IsValid()
}

// DNSRecord es un registro DNS resuelto con tipo explícito.
// Value es el dato normalizado del registro según su tipo: dirección para
// A/AAAA, hostname destino para CNAME/NS/MX, texto para TXT.
type DNSRecord struct {
	Type  RecordType `json:"type"`
	Name  string     `json:"name"`
	Value string     `json:"value"`
	TTL   int        `json:"ttl"`
}

// NewDNSRecord crea un registro tipado.
func NewDNSRecord(t RecordType, name, value string, ttl int) DNSRecord {
	return DNSRecord{Type: t, Name: name, Value: value, TTL: ttl}
}

func (r DNSRecord) String() string {
	return fmt.Sprintf("%s %s -> %s (ttl=%d)", r.Type, r.Name, r.Value, r.TTL)
}

// CNAMELink es un eslabón de una cadena CNAME.
type CNAMELink struct {
	From string `json:"from"`
	To   string `json:"to"`
	TTL  int    `json:"ttl,omitempty"`
}

// MaxCNAMEHops acota la longitud de cualquier cadena CNAME. El walker debe
// terminar en este límite incluso ante cadenas cíclicas.
const MaxCNAMEHops = 10
