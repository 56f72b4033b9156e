// internal/adapters/output/table.go
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"infrascope/internal/core/domain"
)

// TableExporter imprime un resumen legible en terminal.
type TableExporter struct{}

// Name retorna el nombre del exporter.
func (e *TableExporter) Name() string {
	return "table"
}

// Export escribe el resumen tabulado en el writer dado.
func (e *TableExporter) Export(result *domain.AnalysisResult, out io.Writer) error {
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)

	fmt.Fprintf(w, "\n=== Infrascope Analysis Results ===\n")
	fmt.Fprintf(w, "Domain:\t%s\n", result.Domain)
	fmt.Fprintf(w, "Duration:\t%s\n", result.Duration)
	fmt.Fprintf(w, "Subdomains:\t%d\n", len(result.Subdomains))
	fmt.Fprintf(w, "Services:\t%d\n", len(result.Services))
	fmt.Fprintf(w, "DNS queries:\t%d\n", result.Stats.DNSQueries)
	if result.Partial {
		fmt.Fprintf(w, "Note:\tpartial results (discovery timeout)\n")
	}
	fmt.Fprintln(w)

	if len(result.Services) > 0 {
		fmt.Fprintln(w, "SERVICE\tCATEGORY\tSUBDOMAINS\tRECORD TYPES")
		fmt.Fprintln(w, "-------\t--------\t----------\t------------")
		for _, key := range sortedServiceKeys(result.Services) {
			s := result.Services[key]
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
				s.Name,
				s.Category,
				len(s.SourceSubdomains),
				strings.Join(s.RecordTypes, ","),
			)
		}
		fmt.Fprintln(w)
	}

	if len(result.Subdomains) > 0 {
		fmt.Fprintln(w, "SUBDOMAIN\tSTATUS\tIP\tVENDOR\tCNAME")
		fmt.Fprintln(w, "---------\t------\t--\t------\t-----")
		for _, name := range sortedSubdomainNames(result.Subdomains) {
			a := result.Subdomains[name]
			cname := ""
			if len(a.CNAMEChain) > 0 {
				cname = a.CNAMEChain[len(a.CNAMEChain)-1].To
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				a.Subdomain,
				a.Status,
				a.IP,
				a.Vendor.Vendor,
				cname,
			)
		}
		fmt.Fprintln(w)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}

	if len(result.Takeovers) > 0 {
		fmt.Fprintf(out, "Takeover findings (%d):\n", len(result.Takeovers))
		for i, f := range result.Takeovers {
			fmt.Fprintf(out, "  %d. [%s] %s\n", i+1, f.Risk, f.Description)
		}
		fmt.Fprintln(out)
	}

	if len(result.Posture) > 0 {
		fmt.Fprintf(out, "Posture findings (%d):\n", len(result.Posture))
		for i, f := range result.Posture {
			fmt.Fprintf(out, "  %d. [%s] %s: %s\n", i+1, f.Severity, f.Kind, f.Description)
		}
		fmt.Fprintln(out)
	}

	if len(result.Historical) > 0 {
		fmt.Fprintf(out, "Historical (certificate-only) names (%d):\n", len(result.Historical))
		for _, h := range result.Historical {
			issuer := h.CertificateInfo.Issuer
			if issuer == "" {
				issuer = "unknown issuer"
			}
			fmt.Fprintf(out, "  - %s (%s, via %s)\n", h.Subdomain, issuer, h.Source)
		}
		fmt.Fprintln(out)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(out, "Warnings (%d):\n", len(result.Warnings))
		for i, warning := range result.Warnings {
			fmt.Fprintf(out, "  %d. [%s] %s\n", i+1, warning.Source, warning.Message)
		}
		fmt.Fprintln(out)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "Errors (%d):\n", len(result.Errors))
		for i, e := range result.Errors {
			fatal := ""
			if e.Fatal {
				fatal = " (FATAL)"
			}
			fmt.Fprintf(out, "  %d. [%s] %s%s\n", i+1, e.Source, e.Message, fatal)
		}
		fmt.Fprintln(out)
	}

	return nil
}

func sortedServiceKeys(services map[string]*domain.ServiceEntry) []string {
	keys := make([]string, 0, len(services))
	for k := range services {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSubdomainNames(subdomains map[string]*domain.SubdomainAnalysis) []string {
	names := make([]string, 0, len(subdomains))
	for n := range subdomains {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
