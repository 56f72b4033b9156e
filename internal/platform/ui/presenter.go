// internal/platform/ui/presenter.go
package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"infrascope/internal/core/domain"
)

// ConsolePresenter renderiza el progreso del análisis en terminal con pterm.
// Implementa ports.Observer: recibe cada subdominio completado en orden de
// cola y lo pinta en el momento, sin esperar al resultado consolidado.
type ConsolePresenter struct {
	mu        sync.Mutex
	startTime time.Time
	quiet     bool
}

// NewConsolePresenter crea un presenter de consola.
func NewConsolePresenter(quiet bool) *ConsolePresenter {
	return &ConsolePresenter{quiet: quiet}
}

// Start muestra el header del análisis.
func (p *ConsolePresenter) Start(target string, sources int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startTime = time.Now()
	if p.quiet {
		return
	}

	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("Infrascope - SaaS & Infrastructure Discovery")
	pterm.Println()
	pterm.Info.Printf("Target: %s\n", pterm.Cyan(target))
	pterm.Info.Printf("Discovery sources: %d\n", sources)
	pterm.Println()
}

// OnSourceFinished pinta el cierre de cada fuente de discovery.
func (p *ConsolePresenter) OnSourceFinished(source string, outcome domain.SourceOutcome, candidates int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quiet {
		return
	}

	switch outcome {
	case domain.SourceOutcomeSucceeded:
		pterm.Success.Printf("%s: %d candidates\n", source, candidates)
	case domain.SourceOutcomeTimedOut:
		pterm.Warning.Printf("%s: timed out\n", source)
	default:
		pterm.Error.Printf("%s: failed\n", source)
	}
}

// OnSubdomainCompleted pinta una línea por subdominio analizado.
func (p *ConsolePresenter) OnSubdomainCompleted(name string, sources []string, analysis *domain.SubdomainAnalysis) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quiet {
		return
	}

	detail := ""
	switch analysis.Status {
	case domain.AnalysisStatusActive:
		if analysis.PrimaryService != nil {
			detail = pterm.Cyan(analysis.PrimaryService.Name)
		} else if analysis.IP != "" {
			detail = analysis.IP
		}
	case domain.AnalysisStatusRedirect:
		detail = pterm.Gray("redirect to main domain")
	case domain.AnalysisStatusHistorical:
		detail = pterm.Gray("certificate logs only")
	case domain.AnalysisStatusError:
		detail = pterm.Red(analysis.Error)
	}

	line := fmt.Sprintf("%s [%s]", name, analysis.Status)
	if detail != "" {
		line += " " + detail
	}
	if analysis.Takeover != nil {
		line += " " + pterm.Red(fmt.Sprintf("⚠ takeover risk: %s", analysis.Takeover.Risk))
	}
	pterm.Println("  " + line)
}

// OnStatsUpdated no pinta nada; el progreso por línea ya es visible.
func (p *ConsolePresenter) OnStatsUpdated(stats domain.AnalysisStats) {}

// ShowSummary pinta el resumen final consolidado.
func (p *ConsolePresenter) ShowSummary(result *domain.AnalysisResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quiet {
		return
	}

	pterm.Println()
	pterm.DefaultSection.Println("Summary")

	tableData := pterm.TableData{
		{"Subdomains", fmt.Sprintf("%d", len(result.Subdomains))},
		{"Third-party services", fmt.Sprintf("%d", len(result.Services))},
		{"Historical names", fmt.Sprintf("%d", len(result.Historical))},
		{"Takeover findings", fmt.Sprintf("%d", len(result.Takeovers))},
		{"DNS queries", fmt.Sprintf("%d", result.Stats.DNSQueries)},
		{"Duration", result.Duration.Round(time.Millisecond).String()},
	}
	pterm.DefaultTable.WithData(tableData).Render()

	if len(result.Services) > 0 {
		pterm.Println()
		pterm.DefaultSection.WithLevel(2).Println("Detected Services")
		serviceData := pterm.TableData{{"Service", "Category", "Subdomains"}}
		for _, entry := range result.Services {
			serviceData = append(serviceData, []string{
				entry.Name, entry.Category, fmt.Sprintf("%d", len(entry.SourceSubdomains)),
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(serviceData).Render()
	}

	if len(result.Takeovers) > 0 {
		pterm.Println()
		for _, f := range result.Takeovers {
			pterm.Warning.Printf("[%s] %s\n", f.Risk, f.Description)
		}
	}
	if result.Partial {
		pterm.Println()
		pterm.Warning.Println("Discovery hit the global timeout; results may be partial.")
	}
}
