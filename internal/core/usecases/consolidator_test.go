package usecases

import (
	"testing"

	"infrascope/internal/core/domain"
	"infrascope/internal/testutil"
)

func TestConsolidator_MergeService(t *testing.T) {
	t.Run("same key accumulates into one entry", func(t *testing.T) {
		c := NewConsolidator("example.com")
		ref := &domain.ServiceRef{Name: "AWS CloudFront", Category: domain.CategoryCDN}

		c.MergeService(ref, []domain.DNSRecord{
			domain.NewDNSRecord(domain.RecordTypeCNAME, "api.example.com", "d1.cloudfront.net", 300),
		}, nil, "api.example.com")
		c.MergeService(ref, []domain.DNSRecord{
			domain.NewDNSRecord(domain.RecordTypeCNAME, "cdn.example.com", "d2.cloudfront.net", 300),
		}, nil, "cdn.example.com")

		testutil.AssertEqual(t, len(c.Result().Services), 1, "one entry per key")
		entry := c.Result().Services[domain.ServiceKey("AWS CloudFront", domain.CategoryCDN)]
		testutil.AssertEqual(t, len(entry.SourceSubdomains), 2, "subdomains unioned")
		testutil.AssertEqual(t, len(entry.Records), 2, "records unioned")
	})

	t.Run("vendor cloud upgrades generic infrastructure category", func(t *testing.T) {
		c := NewConsolidator("example.com")
		c.MergeService(&domain.ServiceRef{Name: "AWS", Category: domain.CategoryInfrastructure}, nil, nil, "lb.example.com")
		entry := c.MergeService(&domain.ServiceRef{Name: "AWS", Category: domain.CategoryCloud}, nil, nil, "app.example.com")

		testutil.AssertEqual(t, entry.Category, domain.CategoryCloud, "more specific classification wins")
		testutil.AssertEqual(t, len(c.Result().Services), 1, "vendor identity is name only")
	})

	t.Run("non-vendor services keep separate entries per category", func(t *testing.T) {
		c := NewConsolidator("example.com")
		c.MergeService(&domain.ServiceRef{Name: "Zendesk", Category: domain.CategorySaaS}, nil, nil, "help.example.com")
		c.MergeService(&domain.ServiceRef{Name: "Zendesk", Category: domain.CategoryEmail}, nil, nil, "mail.example.com")

		testutil.AssertEqual(t, len(c.Result().Services), 2, "name+category identity for non-vendors")
	})

	t.Run("duplicate records are not stored twice", func(t *testing.T) {
		c := NewConsolidator("example.com")
		ref := &domain.ServiceRef{Name: "Fastly", Category: domain.CategoryCDN}
		rec := domain.NewDNSRecord(domain.RecordTypeCNAME, "www.example.com", "edge.fastly.net", 300)

		c.MergeService(ref, []domain.DNSRecord{rec}, nil, "www.example.com")
		entry := c.MergeService(ref, []domain.DNSRecord{rec}, nil, "www.example.com")

		testutil.AssertEqual(t, len(entry.Records), 1, "exact duplicates dropped")
		testutil.AssertEqual(t, len(entry.SourceSubdomains), 1, "subdomain recorded once")
	})
}

func TestConsolidator_MergeSubdomain(t *testing.T) {
	t.Run("never discards learned information", func(t *testing.T) {
		c := NewConsolidator("example.com")

		rich := domain.NewSubdomainAnalysis("api.example.com", []string{"crtsh"})
		rich.IP = "192.0.2.1"
		rich.CNAMEChain = []domain.CNAMELink{{From: "api.example.com", To: "d1.cloudfront.net"}}
		rich.Vendor = domain.VendorInfo{Vendor: "AWS", Category: domain.CategoryCloud}
		rich.Takeover = &domain.TakeoverFinding{Subdomain: "api.example.com", Risk: domain.TakeoverRiskHigh}
		c.MergeSubdomain(rich)

		poor := domain.NewSubdomainAnalysis("api.example.com", []string{"otx"})
		c.MergeSubdomain(poor)

		merged := c.Result().Subdomains["api.example.com"]
		testutil.AssertEqual(t, merged.IP, "192.0.2.1", "IP kept")
		testutil.AssertEqual(t, len(merged.CNAMEChain), 1, "chain kept")
		testutil.AssertEqual(t, merged.Vendor.Vendor, "AWS", "vendor kept")
		testutil.AssertNotNil(t, merged.Takeover, "takeover kept")
		testutil.AssertEqual(t, len(merged.Sources), 2, "sources unioned")
	})

	t.Run("fills gaps from later updates", func(t *testing.T) {
		c := NewConsolidator("example.com")
		c.MergeSubdomain(domain.NewSubdomainAnalysis("web.example.com", []string{"crtsh"}))

		update := domain.NewSubdomainAnalysis("web.example.com", []string{"crtsh"})
		update.IP = "198.51.100.2"
		c.MergeSubdomain(update)

		testutil.AssertEqual(t, c.Result().Subdomains["web.example.com"].IP, "198.51.100.2", "gap filled")
	})
}

func TestConsolidator_MergeHistorical(t *testing.T) {
	c := NewConsolidator("example.com")

	sparse := domain.NewHistoricalRecord("old.example.com", "hackertarget", domain.CertificateInfo{})
	complete := domain.NewHistoricalRecord("old.example.com", "crtsh", domain.CertificateInfo{
		Issuer:    "Let's Encrypt",
		NotBefore: "2024-01-01",
		NotAfter:  "2024-04-01",
	})

	// El orden de inserción no decide: gana el score.
	c.MergeHistorical(complete)
	c.MergeHistorical(sparse)
	testutil.AssertEqual(t, len(c.Result().Historical), 1, "deduplicated by subdomain")
	testutil.AssertEqual(t, c.Result().Historical[0].Source, "crtsh", "higher score kept against later sparse record")

	c2 := NewConsolidator("example.com")
	c2.MergeHistorical(sparse)
	c2.MergeHistorical(complete)
	testutil.AssertEqual(t, c2.Result().Historical[0].Source, "crtsh", "higher score wins arriving second too")
}

func TestSectionFor(t *testing.T) {
	vendorSub := domain.NewSubdomainAnalysis("cdn.example.com", nil)
	vendorSub.IP = "192.0.2.1"
	vendorSub.CNAMEChain = []domain.CNAMELink{{From: "cdn.example.com", To: "d1.cloudfront.net"}}
	vendorSub.PrimaryService = &domain.ServiceRef{Name: "AWS CloudFront", Category: domain.CategoryCDN}

	historicalSub := domain.NewSubdomainAnalysis("old.example.com", nil)
	historicalSub.Status = domain.AnalysisStatusHistorical

	ipSub := domain.NewSubdomainAnalysis("raw.example.com", nil)
	ipSub.IP = "203.0.113.5"
	ipSub.Status = domain.AnalysisStatusActive

	cnameSub := domain.NewSubdomainAnalysis("alias.example.com", nil)
	cnameSub.CNAMEChain = []domain.CNAMELink{{From: "alias.example.com", To: "lb.internal.example.net"}}
	cnameSub.Status = domain.AnalysisStatusActive

	tests := []struct {
		name     string
		analysis *domain.SubdomainAnalysis
		want     Section
	}{
		{"vendor beats everything", vendorSub, SectionVendor},
		{"historical", historicalSub, SectionHistorical},
		{"unknown with IP", ipSub, SectionUnknownIP},
		{"cname only", cnameSub, SectionCNAMEOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, SectionFor(tt.analysis), tt.want, "section priority")
			// Idempotente: la misma entrada siempre cae en el mismo bucket.
			testutil.AssertEqual(t, SectionFor(tt.analysis), tt.want, "idempotent")
		})
	}
}

func TestConsolidator_SectionsUniqueMembership(t *testing.T) {
	c := NewConsolidator("example.com")

	// Un subdominio que estructuralmente encaja en varios buckets (tiene IP,
	// cadena CNAME y clasificación vendor) debe caer sólo en el de mayor
	// prioridad.
	multi := domain.NewSubdomainAnalysis("multi.example.com", nil)
	multi.IP = "192.0.2.9"
	multi.CNAMEChain = []domain.CNAMELink{{From: "multi.example.com", To: "x.fastly.net"}}
	multi.PrimaryService = &domain.ServiceRef{Name: "Fastly", Category: domain.CategoryCDN}
	c.MergeSubdomain(multi)

	plain := domain.NewSubdomainAnalysis("plain.example.com", nil)
	plain.IP = "198.51.100.1"
	c.MergeSubdomain(plain)

	sections := c.Sections()
	seen := make(map[string]int)
	for _, names := range sections {
		for _, n := range names {
			seen[n]++
		}
	}
	for name, count := range seen {
		testutil.AssertEqual(t, count, 1, "zero duplicate membership for "+name)
	}
	testutil.AssertEqual(t, len(sections[SectionVendor]), 1, "multi-match forced into highest priority bucket")
}
