package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"infrascope/internal/core/domain"
	"infrascope/internal/platform/logx"
	"infrascope/internal/testutil"
)

func sampleResult() *domain.AnalysisResult {
	result := domain.NewAnalysisResult("example.com")

	api := domain.NewSubdomainAnalysis("api.example.com", []string{"crtsh"})
	api.IP = "1.2.3.4"
	api.Status = domain.AnalysisStatusActive
	api.CNAMEChain = []domain.CNAMELink{{From: "api.example.com", To: "svc.cloudfront.net", TTL: 300}}
	api.Vendor = domain.VendorInfo{Vendor: "AWS", Category: domain.CategoryCloud}
	result.Subdomains["api.example.com"] = api

	entry := domain.NewServiceEntry("AWS CloudFront", domain.CategoryCDN, "Amazon CloudFront CDN")
	entry.AddSourceSubdomain("api.example.com")
	entry.AddRecords([]domain.DNSRecord{
		domain.NewDNSRecord(domain.RecordTypeCNAME, "api.example.com", "svc.cloudfront.net", 300),
	})
	result.Services[entry.Key()] = entry

	result.Takeovers = append(result.Takeovers, &domain.TakeoverFinding{
		Subdomain:   "dangling.example.com",
		CNAME:       "gone.herokuapp.com",
		Risk:        domain.TakeoverRiskHigh,
		Description: "dangling CNAME: dangling.example.com points to gone.herokuapp.com which does not resolve",
	})
	result.Posture = append(result.Posture, domain.PostureFinding{
		Kind: "spf-missing", Severity: "medium", Description: "no SPF record found",
	})
	result.Finalize()
	return result
}

func TestJSONExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	exporter := &JSONExporter{Pretty: false}
	testutil.AssertEqual(t, exporter.Name(), "json", "exporter name")

	err := exporter.Export(sampleResult(), &buf)
	testutil.AssertNoError(t, err, "export succeeds")

	var decoded domain.AnalysisResult
	testutil.AssertNoError(t, json.Unmarshal(buf.Bytes(), &decoded), "output is valid JSON")
	testutil.AssertEqual(t, decoded.Domain, "example.com", "domain round-trips")
	testutil.AssertEqual(t, len(decoded.Subdomains), 1, "subdomains serialized")
	testutil.AssertEqual(t, len(decoded.Takeovers), 1, "takeovers serialized")
}

func TestWriteJSONFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteJSONFile(dir, sampleResult())
	testutil.AssertNoError(t, err, "file written")
	testutil.AssertTrue(t, strings.HasPrefix(filepath.Base(path), "infrascope_example.com_"), "timestamped filename")
	testutil.AssertContains(t, path, "example_com", "per-domain subdirectory")

	data, err := os.ReadFile(path)
	testutil.AssertNoError(t, err, "file readable")
	testutil.AssertTrue(t, json.Valid(data), "file holds valid JSON")
}

func TestStreamObserver_EmitsNDJSON(t *testing.T) {
	var buf bytes.Buffer
	s := NewStreamObserver(&buf, logx.NewSilent())

	analysis := domain.NewSubdomainAnalysis("api.example.com", []string{"crtsh"})
	analysis.Status = domain.AnalysisStatusActive

	s.OnSourceFinished("crtsh", domain.SourceOutcomeSucceeded, 12)
	s.OnSubdomainCompleted("api.example.com", []string{"crtsh"}, analysis)
	s.OnStatsUpdated(domain.AnalysisStats{Discovered: 12, Processed: 1, Remaining: 11, Total: 12})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	testutil.AssertEqual(t, len(lines), 3, "one line per event")

	var first map[string]interface{}
	testutil.AssertNoError(t, json.Unmarshal([]byte(lines[0]), &first), "each line is standalone JSON")
	testutil.AssertEqual(t, first["event"], "source_finished", "event order preserved")

	var second map[string]interface{}
	json.Unmarshal([]byte(lines[1]), &second)
	testutil.AssertEqual(t, second["event"], "subdomain_completed", "completion event")
	testutil.AssertNotNil(t, second["subdomain"], "full analysis embedded")
}

func TestTableExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	exporter := &TableExporter{}
	testutil.AssertEqual(t, exporter.Name(), "table", "exporter name")

	err := exporter.Export(sampleResult(), &buf)
	testutil.AssertNoError(t, err, "export succeeds")

	text := buf.String()
	testutil.AssertContains(t, text, "example.com", "domain header")
	testutil.AssertContains(t, text, "AWS CloudFront", "service row")
	testutil.AssertContains(t, text, "api.example.com", "subdomain row")
	testutil.AssertContains(t, text, "Takeover findings (1)", "takeover section")
	testutil.AssertContains(t, text, "spf-missing", "posture section")
}

func TestTableExporter_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	result := domain.NewAnalysisResult("example.com")
	result.Finalize()

	err := (&TableExporter{}).Export(result, &buf)
	testutil.AssertNoError(t, err, "empty result renders without sections")
	testutil.AssertFalse(t, strings.Contains(buf.String(), "SERVICE"), "no service table when empty")
}
