// internal/asn/classifier.go
//
// Resolución de IP a organización/ASN con fallback entre providers externos.
package asn

import (
	"context"
	"time"

	"infrascope/internal/core/domain"
	"infrascope/internal/platform/cache"
	"infrascope/internal/platform/httpclient"
	"infrascope/internal/platform/logx"
	"infrascope/internal/platform/ratelimit"
)

const cacheTTL = 30 * time.Minute

// Classifier resuelve IPs contra una lista ordenada de providers de
// geolocalización. Acepta la primera respuesta con organización presente.
type Classifier struct {
	client    *httpclient.Client
	providers []Provider
	cache     *cache.TTLCache[*domain.ASNInfo]
	logger    logx.Logger
}

// Options configura el classifier.
type Options struct {
	Providers []Provider
	Limiter   *ratelimit.Limiter
	HTTP      httpclient.Config
	CacheSize int
	Logger    logx.Logger
}

// NewClassifier crea un classifier con fallback entre providers.
func NewClassifier(opts Options) *Classifier {
	if len(opts.Providers) == 0 {
		opts.Providers = DefaultProviders()
	}
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	httpCfg := opts.HTTP
	if httpCfg.Timeout == 0 {
		httpCfg = httpclient.DefaultConfig()
		httpCfg.Timeout = 8 * time.Second
		httpCfg.MaxRetries = 0
	}

	return &Classifier{
		client:    httpclient.New(httpCfg, opts.Limiter, opts.Logger),
		providers: opts.Providers,
		cache:     cache.New[*domain.ASNInfo](opts.CacheSize),
		logger:    opts.Logger.With("component", "asn"),
	}
}

// Resolve consulta los providers en orden y retorna el primer registro con
// organización utilizable. Nunca retorna nil: si todos los providers fallan
// se entrega un registro Unknown completo para que los callers no traten un
// fallo de ASN como fatal.
func (c *Classifier) Resolve(ctx context.Context, ip string) *domain.ASNInfo {
	if ip == "" {
		return domain.UnknownASNInfo()
	}
	if cached, ok := c.cache.Get(ip); ok {
		return cached
	}

	for _, provider := range c.providers {
		body, err := c.client.FetchJSON(ctx, provider.URL(ip))
		if err != nil {
			c.logger.Debug("ASN provider failed", "provider", provider.Name, "ip", ip, "error", err.Error())
			continue
		}

		info, err := provider.Parse(body)
		if err != nil {
			c.logger.Debug("ASN provider returned unusable data", "provider", provider.Name, "ip", ip, "error", err.Error())
			continue
		}
		if info.IsUnknown() {
			// Respuesta bien formada pero sin organización: probar el
			// siguiente provider.
			continue
		}

		c.cache.Set(ip, info, cacheTTL)
		return info
	}

	c.logger.Warn("all ASN providers exhausted", "ip", ip)
	return domain.UnknownASNInfo()
}
