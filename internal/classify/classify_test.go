package classify

import (
	"testing"

	"infrascope/internal/core/domain"
	"infrascope/internal/testutil"
)

func TestService(t *testing.T) {
	tests := []struct {
		name     string
		hostname string
		wantName string
		wantCat  string
		wantNil  bool
	}{
		{"cloudfront edge", "d123.cloudfront.net", "AWS CloudFront", "cdn", false},
		{"elb beats generic aws suffix", "lb-1.elb.amazonaws.com", "AWS", "infrastructure", false},
		{"generic aws", "ec2-1-2-3-4.compute-1.amazonaws.com", "AWS", "cloud", false},
		{"github pages", "org.github.io", "GitHub Pages", "hosting", false},
		{"heroku", "calm-river-1234.herokuapp.com", "Heroku", "hosting", false},
		{"shopify", "shops.myshopify.com", "Shopify", "saas", false},
		{"label boundary respected", "mycloudfront.net", "", "", true},
		{"trailing dot tolerated", "edge.fastly.net.", "Fastly", "cdn", false},
		{"unknown host", "lb.internal.example.com", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := Service(tt.hostname)
			if tt.wantNil {
				testutil.AssertTrue(t, ref == nil, "expected no classification")
				return
			}
			testutil.AssertNotNil(t, ref, "expected a classification")
			testutil.AssertEqual(t, ref.Name, tt.wantName, "service name")
			testutil.AssertEqual(t, ref.Category, tt.wantCat, "service category")
		})
	}
}

func TestChain(t *testing.T) {
	t.Run("primary from first hop, infrastructure from last", func(t *testing.T) {
		chain := []domain.CNAMELink{
			{From: "shop.example.com", To: "shops.myshopify.com"},
			{From: "shops.myshopify.com", To: "lb-7.elb.amazonaws.com"},
		}
		primary, infra := Chain(chain)
		testutil.AssertNotNil(t, primary, "primary classified")
		testutil.AssertEqual(t, primary.Name, "Shopify", "primary is the edge service")
		testutil.AssertNotNil(t, infra, "infrastructure classified")
		testutil.AssertEqual(t, infra.Name, "AWS", "infrastructure is the final substrate")
	})

	t.Run("single hop classifies as both", func(t *testing.T) {
		chain := []domain.CNAMELink{{From: "cdn.example.com", To: "d99.cloudfront.net"}}
		primary, infra := Chain(chain)
		testutil.AssertNotNil(t, primary, "primary classified")
		testutil.AssertEqual(t, primary, infra, "same ref for both roles")
	})

	t.Run("empty chain", func(t *testing.T) {
		primary, infra := Chain(nil)
		testutil.AssertTrue(t, primary == nil, "no primary without chain")
		testutil.AssertTrue(t, infra == nil, "no infrastructure without chain")
	})

	t.Run("unclassifiable hops yield nil without error", func(t *testing.T) {
		chain := []domain.CNAMELink{{From: "a.example.com", To: "b.internal.example.com"}}
		primary, infra := Chain(chain)
		testutil.AssertTrue(t, primary == nil, "unknown first hop")
		testutil.AssertTrue(t, infra == nil, "unknown last hop")
	})
}

func TestVendor(t *testing.T) {
	tests := []struct {
		name    string
		isp     string
		vendor  string
		cat     string
	}{
		{"amazon org", "Amazon.com, Inc.", "AWS", "cloud"},
		{"google case insensitive", "GOOGLE LLC", "Google Cloud", "cloud"},
		{"cloudflare", "Cloudflare, Inc.", "Cloudflare", "cdn"},
		{"hetzner", "Hetzner Online GmbH", "Hetzner", "hosting"},
		{"unmatched org passes through raw", "Universidad de Granada", "Universidad de Granada", domain.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Vendor(&domain.ASNInfo{ASN: "AS0", ISP: tt.isp})
			testutil.AssertEqual(t, got.Vendor, tt.vendor, "vendor label")
			testutil.AssertEqual(t, got.Category, tt.cat, "vendor category")
		})
	}

	t.Run("unknown record", func(t *testing.T) {
		got := Vendor(domain.UnknownASNInfo())
		testutil.AssertEqual(t, got.Vendor, "Unknown", "unknown vendor")
		testutil.AssertEqual(t, got.Category, domain.CategoryOther, "other category")
	})
}
