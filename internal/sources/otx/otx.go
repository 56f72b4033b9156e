// internal/sources/otx/otx.go
package otx

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
		"otx",
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:         "otx",
			Description:  "Passive DNS feed via AlienVault OTX",
			RequiresAuth: false,
			Priority:     6,
		},
	); err != nil {
		logx.New().Warn("failed to register otx source", "error", err.Error())
	}
}

// OTX consulta el feed de passive DNS de AlienVault Open Threat Exchange.
type OTX struct {
	client  *httpclient.Client
	logger  logx.Logger
	baseURL string
	apiKey  string
}

// New crea una instancia de la fuente OTX.
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

	return &OTX{
		client:  httpclient.New(httpConfig, nil, logger),
		logger:  logger.With("source", "otx"),
		baseURL: "https://otx.alienvault.com",
		apiKey:  cfg.Custom["api_key"],
	}
}

// Name retorna el nombre de la fuente.
func (o *OTX) Name() string {
	return "otx"
}

// Run ejecuta la fuente contra el target.
func (o *OTX) Run(ctx context.Context, target domain.Target) (*ports.SourceResult, error) {
	o.logger.Debug("starting otx query", "target", target.Root)
	result := ports.NewSourceResult(o.Name())

	queryURL := fmt.Sprintf("%s/api/v1/indicators/domain/%s/passive_dns",
		o.baseURL, url.PathEscape(target.Root))

	headers := map[string]string{"Accept": "application/json"}
	if o.apiKey != "" {
		headers["X-OTX-API-KEY"] = o.apiKey
	}

	resp, err := o.client.Get(ctx, queryURL, headers)
	if err != nil {
		o.logger.Warn("otx request failed", "target", target.Root, "error", err.Error())
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

	var feed passiveDNSFeed
	if err := json.Unmarshal(body, &feed); err != nil {
		result.AddWarning(fmt.Sprintf("failed to parse otx response: %v", err))
		return result, nil
	}

	seen := make(map[string]bool)
	for _, entry := range feed.PassiveDNS {
		host := validator.NormalizeHostname(entry.Hostname)
		if host == "" || validator.IsWildcard(host) {
			continue
		}
		if !target.IsInScope(host) || seen[host] {
			continue
		}
		seen[host] = true
		result.AddCandidate(host, nil)
	}

	o.logger.Info("otx query completed",
		"target", target.Root,
		"entries", len(feed.PassiveDNS),
		"candidates", len(result.Candidates),
	)
	return result, nil
}

// Close implementa ports.Source. No hay recursos que liberar.
func (o *OTX) Close() error {
	return nil
}

// passiveDNSFeed es la respuesta del endpoint passive_dns de OTX.
type passiveDNSFeed struct {
	PassiveDNS []struct {
		Hostname   string `json:"hostname"`
		Address    string `json:"address"`
		RecordType string `json:"record_type"`
	} `json:"passive_dns"`
}
