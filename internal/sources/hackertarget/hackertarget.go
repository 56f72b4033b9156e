// internal/sources/hackertarget/hackertarget.go
package hackertarget

import (
	"context"
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
		"hackertarget",
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:         "hackertarget",
			Description:  "Passive DNS host search via HackerTarget",
			RequiresAuth: false,
			Priority:     5,
		},
	); err != nil {
		logx.New().Warn("failed to register hackertarget source", "error", err.Error())
	}
}

// HackerTarget consulta el endpoint hostsearch de HackerTarget, que responde
// CSV plano "host,ip" por línea.
type HackerTarget struct {
	client  *httpclient.Client
	logger  logx.Logger
	baseURL string
}

// New crea una instancia de la fuente HackerTarget.
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

	return &HackerTarget{
		client:  httpclient.New(httpConfig, nil, logger),
		logger:  logger.With("source", "hackertarget"),
		baseURL: "https://api.hackertarget.com",
	}
}

// Name retorna el nombre de la fuente.
func (h *HackerTarget) Name() string {
	return "hackertarget"
}

// Run ejecuta la fuente contra el target.
func (h *HackerTarget) Run(ctx context.Context, target domain.Target) (*ports.SourceResult, error) {
	h.logger.Debug("starting hackertarget query", "target", target.Root)
	result := ports.NewSourceResult(h.Name())

	queryURL := fmt.Sprintf("%s/hostsearch/?q=%s", h.baseURL, url.QueryEscape(target.Root))
	body, err := h.client.FetchText(ctx, queryURL)
	if err != nil {
		h.logger.Warn("hackertarget request failed", "target", target.Root, "error", err.Error())
		return result, err
	}

	text := strings.TrimSpace(string(body))
	// La API señala errores en el body con status 200
	if strings.HasPrefix(text, "error") || strings.Contains(text, "API count exceeded") {
		result.AddWarning(fmt.Sprintf("hackertarget API error: %s", text))
		return result, nil
	}
	if text == "" {
		return result, nil
	}

	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		fields := strings.SplitN(strings.TrimSpace(line), ",", 2)
		host := validator.NormalizeHostname(fields[0])
		if host == "" || validator.IsWildcard(host) {
			continue
		}
		if !target.IsInScope(host) || seen[host] {
			continue
		}
		seen[host] = true
		result.AddCandidate(host, nil)
	}

	h.logger.Info("hackertarget query completed",
		"target", target.Root,
		"candidates", len(result.Candidates),
	)
	return result, nil
}

// Close implementa ports.Source. No hay recursos que liberar.
func (h *HackerTarget) Close() error {
	return nil
}
