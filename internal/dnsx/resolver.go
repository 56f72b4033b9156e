// internal/dnsx/resolver.go
package dnsx

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"infrascope/internal/core/domain"
	"infrascope/internal/platform/cache"
	"infrascope/internal/platform/httpclient"
	"infrascope/internal/platform/logx"
	"infrascope/internal/platform/ratelimit"
)

// rcodeNXDomain es el Status DoH para nombre inexistente.
const rcodeNXDomain = 3

const (
	negativeCacheTTL = 60 * time.Second
	maxAnswerTTL     = 300 * time.Second
)

// Resolver emite queries DNS-over-HTTPS contra múltiples servers con failover
// primario/backup y normaliza el JSON de cada provider a registros tipados.
//
// Semántica de fallback: un server que responde bien formado con cero answers
// es una negativa autoritativa y corta la cadena: seguir preguntando tras una
// negativa confirmada gasta cuota y puede producir resultados inconsistentes.
// Sólo un fallo de transporte pasa al siguiente server.
type Resolver struct {
	client  *httpclient.Client
	servers []Server
	cache   *cache.TTLCache[[]domain.DNSRecord]
	logger  logx.Logger

	// queries cuenta cada intento emitido (incluye retries de failover)
	queries atomic.Int64
}

// Options configura el resolver.
type Options struct {
	Servers []Server
	// Limiter es el rate limiter compartido de la clase resolver; todos los
	// callers del proceso se encolan en la misma instancia.
	Limiter   *ratelimit.Limiter
	HTTP      httpclient.Config
	CacheSize int
	Logger    logx.Logger
}

// NewResolver crea un resolver DoH.
func NewResolver(opts Options) *Resolver {
	if len(opts.Servers) == 0 {
		opts.Servers = DefaultServers()
	}
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 512
	}
	httpCfg := opts.HTTP
	if httpCfg.Timeout == 0 {
		httpCfg = httpclient.DefaultConfig()
		// El failover entre servers ya cubre los reintentos; un retry interno
		// por server basta.
		httpCfg.MaxRetries = 1
		httpCfg.Timeout = 10 * time.Second
	}

	return &Resolver{
		client:  httpclient.New(httpCfg, opts.Limiter, opts.Logger),
		servers: opts.Servers,
		cache:   cache.New[[]domain.DNSRecord](opts.CacheSize),
		logger:  opts.Logger.With("component", "resolver"),
	}
}

// dohResponse es la forma común del JSON de los providers DoH.
type dohResponse struct {
	Status int         `json:"Status"`
	Answer []dohAnswer `json:"Answer"`
}

type dohAnswer struct {
	Name string `json:"name"`
	Type uint16 `json:"type"`
	TTL  int    `json:"TTL"`
	Data string `json:"data"`
}

// Query resuelve name/recordType recorriendo primarios y, sólo si todos los
// primarios fallan en transporte, los backups. Retorna nil únicamente cuando
// todos los servers configurados se agotaron; una negativa autoritativa
// retorna la lista vacía.
func (r *Resolver) Query(ctx context.Context, name string, recordType domain.RecordType) []domain.DNSRecord {
	cacheKey := name + "|" + string(recordType)
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached
	}

	records, ok := r.tryServers(ctx, name, recordType, r.primaries())
	if !ok {
		r.logger.Warn("all primary servers failed, falling back to backups",
			"name", name, "type", recordType)
		records, ok = r.tryServers(ctx, name, recordType, r.backups())
	}
	if !ok {
		// Todos los servers agotados: el caller recibe nil y decide.
		return nil
	}

	ttl := negativeCacheTTL
	if len(records) > 0 {
		ttl = answerTTL(records)
	}
	r.cache.Set(cacheKey, records, ttl)
	return records
}

// QueryServer emite una query contra un server concreto.
// Un error de transporte/HTTP se retorna al caller; una respuesta bien formada
// con cero answers retorna la lista vacía sin error.
func (r *Resolver) QueryServer(ctx context.Context, name string, recordType domain.RecordType, server Server) ([]domain.DNSRecord, error) {
	r.queries.Add(1)

	body, err := r.client.FetchDNSJSON(ctx, server.QueryURL(name, string(recordType)))
	if err != nil {
		return nil, err
	}

	var resp dohResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	if resp.Status == rcodeNXDomain || len(resp.Answer) == 0 {
		return []domain.DNSRecord{}, nil
	}

	records := make([]domain.DNSRecord, 0, len(resp.Answer))
	for _, ans := range resp.Answer {
		t, supported := domain.RecordTypeFromWire(ans.Type)
		if !supported {
			continue
		}
		records = append(records, domain.NewDNSRecord(
			t,
			strings.TrimSuffix(ans.Name, "."),
			normalizeAnswerData(t, ans.Data),
			ans.TTL,
		))
	}
	return records, nil
}

// Queries retorna el contador de intentos emitidos durante el run.
func (r *Resolver) Queries() int {
	return int(r.queries.Load())
}

// tryServers recorre la lista en orden. ok=false significa que todos fallaron
// en transporte; ok=true entrega la primera respuesta bien formada (positiva
// o negativa autoritativa).
func (r *Resolver) tryServers(ctx context.Context, name string, recordType domain.RecordType, servers []Server) ([]domain.DNSRecord, bool) {
	for _, server := range servers {
		records, err := r.QueryServer(ctx, name, recordType, server)
		if err != nil {
			r.logger.Warn("DNS server failed",
				"server", server.Name,
				"name", name,
				"type", recordType,
				"error", err.Error(),
			)
			continue
		}
		return records, true
	}
	return nil, false
}

func (r *Resolver) primaries() []Server {
	out := make([]Server, 0, len(r.servers))
	for _, s := range r.servers {
		if s.Primary {
			out = append(out, s)
		}
	}
	return out
}

func (r *Resolver) backups() []Server {
	out := make([]Server, 0)
	for _, s := range r.servers {
		if !s.Primary {
			out = append(out, s)
		}
	}
	return out
}

// FilterType retorna los registros que coinciden con el tipo pedido. Un query
// A sobre un nombre con CNAME trae la cadena entera en Answer; los callers
// filtran lo que necesitan.
func FilterType(records []domain.DNSRecord, t domain.RecordType) []domain.DNSRecord {
	out := make([]domain.DNSRecord, 0, len(records))
	for _, rec := range records {
		if rec.Type == t {
			out = append(out, rec)
		}
	}
	return out
}

// normalizeAnswerData limpia el data crudo del provider según el tipo.
func normalizeAnswerData(t domain.RecordType, data string) string {
	data = strings.TrimSpace(data)
	switch t {
	case domain.RecordTypeCNAME, domain.RecordTypeNS:
		return strings.ToLower(strings.TrimSuffix(data, "."))
	case domain.RecordTypeMX:
		// "10 mail.example.com." -> conservar prioridad, normalizar host
		return strings.ToLower(strings.TrimSuffix(data, "."))
	case domain.RecordTypeTXT:
		return strings.Trim(data, `"`)
	default:
		return data
	}
}

// answerTTL calcula el TTL de cache de un answer set: el mínimo de los
// registros acotado por maxAnswerTTL.
func answerTTL(records []domain.DNSRecord) time.Duration {
	minTTL := int(maxAnswerTTL / time.Second)
	for _, rec := range records {
		if rec.TTL > 0 && rec.TTL < minTTL {
			minTTL = rec.TTL
		}
	}
	return time.Duration(minTTL) * time.Second
}
