// internal/sources/certspotter/certspotter.go
package certspotter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"infrascope/internal/core/domain"
	"infrascope/internal/core/ports"
	"infrascope/internal/platform/httpclient"
	"infrascope/internal/platform/logx"
	"infrascope/internal/platform/registry"
	"infrascope/internal/platform/validator"
)

// Auto-registro de la source al importar el package
func init() {
	if err := registry.Global().Register(
		"certspotter",
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:         "certspotter",
			Description:  "Certificate Transparency monitoring via SSLMate Cert Spotter",
			RequiresAuth: false,
			Priority:     8,
		},
	); err != nil {
		logx.New().Warn("failed to register certspotter source", "error", err.Error())
	}
}

// CertSpotter consulta la API de issuances de SSLMate. Sin API key opera con
// la cuota anónima; con cfg.Custom["api_key"] usa la cuota autenticada.
type CertSpotter struct {
	client  *httpclient.Client
	logger  logx.Logger
	baseURL string
	apiKey  string
}

// New crea una instancia de la fuente Cert Spotter.
func New(cfg ports.SourceConfig, logger logx.Logger) ports.Source {
	httpConfig := httpclient.Config{
		Timeout:         cfg.Timeout,
		MaxRetries:      cfg.Retries,
		RetryBackoff:    2 * time.Second,
		MaxRetryBackoff: 30 * time.Second,
	}
	if httpConfig.Timeout == 0 {
		httpConfig.Timeout = 30 * time.Second
	}

	return &CertSpotter{
		client:  httpclient.New(httpConfig, nil, logger),
		logger:  logger.With("source", "certspotter"),
		baseURL: "https://api.certspotter.com",
		apiKey:  cfg.Custom["api_key"],
	}
}

// Name retorna el nombre de la fuente.
func (c *CertSpotter) Name() string {
	return "certspotter"
}

// Run ejecuta la fuente contra el target.
func (c *CertSpotter) Run(ctx context.Context, target domain.Target) (*ports.SourceResult, error) {
	c.logger.Debug("starting certspotter query", "target", target.Root)
	result := ports.NewSourceResult(c.Name())

	queryURL := fmt.Sprintf(
		"%s/v1/issuances?domain=%s&include_subdomains=true&expand=dns_names&expand=issuer",
		c.baseURL, url.QueryEscape(target.Root),
	)

	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	resp, err := c.client.Get(ctx, queryURL, headers)
	if err != nil {
		c.logger.Warn("certspotter request failed", "target", target.Root, "error", err.Error())
		return result, err
	}
	if err := httpclient.CheckStatus(resp); err != nil {
		resp.Body.Close()
		return result, err
	}
	body, err := httpclient.ReadBody(resp)
	if err != nil {
		return result, err
	}

	var issuances []issuance
	if err := json.Unmarshal(body, &issuances); err != nil {
		result.AddWarning(fmt.Sprintf("failed to parse certspotter response: %v", err))
		return result, nil
	}

	seen := make(map[string]bool)
	for _, iss := range issuances {
		cert := &domain.CertificateInfo{
			Issuer:        iss.Issuer.FriendlyName,
			NotBefore:     iss.NotBefore,
			NotAfter:      iss.NotAfter,
			CertificateID: iss.ID,
		}
		for _, name := range iss.DNSNames {
			name = validator.NormalizeHostname(name)
			if name == "" || validator.IsWildcard(name) {
				continue
			}
			if !target.IsInScope(name) || seen[name] {
				continue
			}
			seen[name] = true
			result.AddCandidate(name, cert)
		}
	}

	c.logger.Info("certspotter query completed",
		"target", target.Root,
		"issuances", len(issuances),
		"candidates", len(result.Candidates),
	)
	return result, nil
}

// Close implementa ports.Source. No hay recursos que liberar.
func (c *CertSpotter) Close() error {
	return nil
}

// issuance representa una emisión de certificado de la API de Cert Spotter.
type issuance struct {
	ID        string   `json:"id"`
	DNSNames  []string `json:"dns_names"`
	NotBefore string   `json:"not_before"`
	NotAfter  string   `json:"not_after"`
	Issuer    struct {
		FriendlyName string `json:"friendly_name"`
	} `json:"issuer"`
}
