// cmd/infrascope/main.go
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"infrascope/internal/adapters/output"
	"infrascope/internal/asn"
	"infrascope/internal/core/domain"
	"infrascope/internal/core/ports"
	"infrascope/internal/core/usecases"
	"infrascope/internal/dnsx"
	"infrascope/internal/platform/config"
	"infrascope/internal/platform/logx"
	"infrascope/internal/platform/ratelimit"
	"infrascope/internal/platform/registry"
	"infrascope/internal/platform/resilience"
	"infrascope/internal/platform/ui"

	// Import sources for auto-registration via init()
	_ "infrascope/internal/sources/certspotter"
	_ "infrascope/internal/sources/crtsh"
	_ "infrascope/internal/sources/hackertarget"
	_ "infrascope/internal/sources/otx"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// 1. Load centralized config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: configuration load failed: %v\n", err)
		os.Exit(2)
	}

	if cfg.PrintVersion {
		fmt.Printf("infrascope %s (commit %s, built %s)\n", version, commit, date)
		os.Exit(0)
	}

	if cfg.Target == "" {
		fmt.Fprintln(os.Stderr, "Error: target domain is required")
		fmt.Fprintln(os.Stderr, "Usage: infrascope -t <domain>")
		fmt.Fprintln(os.Stderr, "Try: infrascope -h for help")
		os.Exit(2)
	}

	// 2. Shared logger
	logger := logx.New()

	logger.Info("infrascope starting",
		"version", version,
		"target", cfg.Target,
		"timeout", cfg.DiscoveryTimeout(),
	)

	// 3. Context and signals for clean shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 4. Build target domain
	target := domain.NewTarget(cfg.Target)
	target.ExcludeDomains = cfg.ExcludeDomains

	if err := target.Validate(); err != nil {
		logger.Err(err, "phase", "validation")
		os.Exit(2)
	}

	// 5. Build sources from registry with retry wrappers
	sources, err := buildSources(logger, cfg)
	if err != nil {
		logger.Err(err, "phase", "source-build")
		os.Exit(2)
	}
	if len(sources) == 0 {
		logger.Err(fmt.Errorf("no sources enabled"))
		os.Exit(2)
	}
	defer closeSources(sources, logger)

	logger.Info("sources built", "count", len(sources))

	// 6. Resolution stack: un limiter compartido por todo el tráfico DoH,
	// otro independiente para los providers de ASN.
	resolver := dnsx.NewResolver(dnsx.Options{
		Servers: buildServers(cfg.Resolver),
		Limiter: newLimiter(cfg.Resolver.RateLimit, cfg.Resolver.RateWindowS),
		Logger:  logger,
	})
	walker := dnsx.NewWalker(resolver, logger)
	classifier := asn.NewClassifier(asn.Options{
		Limiter: newLimiter(2, 1),
		Logger:  logger,
	})

	// 7. Observers: consola interactiva siempre, NDJSON opcional
	observers, closeStream, err := buildObservers(cfg, logger)
	if err != nil {
		logger.Err(err, "phase", "observer-build")
		os.Exit(2)
	}
	defer closeStream()

	presenter := ui.NewConsolePresenter(cfg.Quiet)
	observers = append(observers, presenter)
	presenter.Start(target.Root, len(sources))

	// 8. Orchestrator
	orch := usecases.NewOrchestrator(usecases.OrchestratorOptions{
		Sources:          sources,
		Resolver:         resolver,
		Walker:           walker,
		ASN:              classifier,
		Observers:        observers,
		Logger:           logger,
		DiscoveryTimeout: cfg.DiscoveryTimeout(),
	})

	// 9. Execute analysis
	start := time.Now()
	result, runErr := orch.Run(ctx, target)
	elapsed := time.Since(start)

	if runErr != nil {
		logger.Err(runErr, "phase", "run", "elapsed_ms", elapsed.Milliseconds())
		os.Exit(1)
	}

	// 10. Outputs
	presenter.ShowSummary(result)

	path, err := output.WriteJSONFile(cfg.OutputDir, result)
	if err != nil {
		logger.Err(err, "phase", "output")
		os.Exit(1)
	}
	logger.Info("report written", "path", path)

	if !cfg.Outputs.TableDisabled {
		var table ports.Exporter = &output.TableExporter{}
		if err := table.Export(result, os.Stdout); err != nil {
			logger.Warn("table output failed", "error", err.Error())
		}
	}

	logger.Info("infrascope finished",
		"elapsed_ms", elapsed.Milliseconds(),
		"subdomains", result.Stats.Total,
		"warnings", len(result.Warnings),
		"errors", len(result.Errors),
	)

	if result.Partial {
		os.Exit(3)
	}
}

// buildSources construye las fuentes habilitadas y las envuelve con retry y
// backoff exponencial.
func buildSources(logger logx.Logger, cfg config.Config) ([]ports.Source, error) {
	sources, err := registry.Global().Build(cfg.Sources, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build sources: %w", err)
	}

	wrapped := make([]ports.Source, 0, len(sources))
	for _, src := range sources {
		wrapped = append(wrapped, resilience.NewRetryableSource(
			src,
			cfg.Resilience.MaxRetries,
			cfg.Resilience.BackoffBase,
			cfg.Resilience.BackoffMultiplier,
			logger,
		))
	}
	return wrapped, nil
}

func closeSources(sources []ports.Source, logger logx.Logger) {
	for _, src := range sources {
		if err := src.Close(); err != nil {
			logger.Warn("failed to close source",
				"source", src.Name(),
				"error", err.Error(),
			)
		}
	}
}

// buildServers traduce la configuración de resolver a la lista de servers
// DoH. Listas vacías significan los defaults del resolver.
func buildServers(rc config.Resolver) []dnsx.Server {
	if len(rc.Primary) == 0 && len(rc.Backup) == 0 {
		return nil
	}

	servers := make([]dnsx.Server, 0, len(rc.Primary)+len(rc.Backup))
	for _, endpoint := range rc.Primary {
		servers = append(servers, dnsx.Server{Name: serverName(endpoint), BaseURL: endpoint, Primary: true})
	}
	for _, endpoint := range rc.Backup {
		servers = append(servers, dnsx.Server{Name: serverName(endpoint), BaseURL: endpoint, Primary: false})
	}
	return servers
}

func serverName(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}

func newLimiter(maxRequests, windowS int) *ratelimit.Limiter {
	if maxRequests <= 0 {
		return nil
	}
	return ratelimit.New(maxRequests, time.Duration(windowS)*time.Second)
}

// buildObservers arma los observers no interactivos. El cierre del stream
// NDJSON queda a cargo del caller via la función retornada.
func buildObservers(cfg config.Config, logger logx.Logger) ([]ports.Observer, func(), error) {
	if cfg.StreamPath == "" {
		return nil, func() {}, nil
	}

	f, err := os.Create(cfg.StreamPath)
	if err != nil {
		return nil, func() {}, fmt.Errorf("creating stream file: %w", err)
	}

	stream := output.NewStreamObserver(f, logger)
	closeFn := func() {
		if err := f.Close(); err != nil {
			logger.Warn("failed to close stream file", "error", err.Error())
		}
	}
	return []ports.Observer{stream}, closeFn, nil
}
