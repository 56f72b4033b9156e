// internal/sources/crtsh/crtsh.go
package crtsh

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
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
		"crtsh",
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:         "crtsh",
			Description:  "Certificate Transparency log search via crt.sh",
			RequiresAuth: false,
			Priority:     10,
		},
	); err != nil {
		logx.New().Warn("failed to register crtsh source", "error", err.Error())
	}
}

// CRT consulta la base de datos de certificate transparency de crt.sh para
// descubrir subdominios con certificado emitido.
type CRT struct {
	client  *httpclient.Client
	logger  logx.Logger
	baseURL string
}

// New crea una instancia de la fuente crt.sh.
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

	return &CRT{
		client:  httpclient.New(httpConfig, nil, logger),
		logger:  logger.With("source", "crtsh"),
		baseURL: "https://crt.sh",
	}
}

// Name retorna el nombre de la fuente.
func (c *CRT) Name() string {
	return "crtsh"
}

// Run ejecuta la fuente contra el target.
func (c *CRT) Run(ctx context.Context, target domain.Target) (*ports.SourceResult, error) {
	c.logger.Debug("starting crtsh query", "target", target.Root)
	result := ports.NewSourceResult(c.Name())

	queryURL := fmt.Sprintf("%s/?q=%s&output=json", c.baseURL, url.QueryEscape("%."+target.Root))
	body, err := c.client.FetchJSON(ctx, queryURL)
	if err != nil {
		c.logger.Warn("crtsh request failed", "target", target.Root, "error", err.Error())
		return result, err
	}

	var records []certRecord
	if err := json.Unmarshal(body, &records); err != nil {
		// crt.sh devuelve HTML en vez de JSON cuando está sobrecargado
		result.AddWarning(fmt.Sprintf("failed to parse crt.sh response: %v", err))
		return result, nil
	}

	seen := make(map[string]bool)
	for _, record := range records {
		// name_value puede contener múltiples nombres separados por \n
		for _, host := range strings.Split(record.NameValue, "\n") {
			host = validator.NormalizeHostname(host)
			if host == "" || validator.IsWildcard(host) {
				continue
			}
			if !target.IsInScope(host) || seen[host] {
				continue
			}
			seen[host] = true

			result.AddCandidate(host, &domain.CertificateInfo{
				Issuer:        record.IssuerName,
				NotBefore:     record.NotBefore,
				NotAfter:      record.NotAfter,
				CertificateID: record.SerialNumber,
			})
		}
	}

	c.logger.Info("crtsh query completed",
		"target", target.Root,
		"certificates", len(records),
		"candidates", len(result.Candidates),
	)
	return result, nil
}

// Close implementa ports.Source. No hay recursos que liberar.
func (c *CRT) Close() error {
	return nil
}

// certRecord representa un registro de certificado de crt.sh.
type certRecord struct {
	IssuerName   string `json:"issuer_name"`
	NameValue    string `json:"name_value"`
	NotAfter     string `json:"not_after"`
	NotBefore    string `json:"not_before"`
	SerialNumber string `json:"serial_number"`
}
