package certspotter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"infrascope/internal/core/domain"
	"infrascope/internal/platform/httpclient"
	"infrascope/internal/platform/logx"
	"infrascope/internal/platform/registry"
	"infrascope/internal/testutil"
)

func newTestSource(baseURL, apiKey string) *CertSpotter {
	return &CertSpotter{
		client:  httpclient.New(httpclient.Config{Timeout: 2 * time.Second}, nil, logx.NewSilent()),
		logger:  logx.NewSilent(),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func TestCertSpotter_Run(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.URL.Query().Get("domain"), "example.com", "domain parameter")
		testutil.AssertEqual(t, r.URL.Query().Get("include_subdomains"), "true", "subdomains requested")
		w.Write([]byte(`[
			{"id":"1234","dns_names":["api.example.com","*.example.com","cdn.other.net"],"not_before":"2025-02-01T00:00:00Z","not_after":"2025-05-01T00:00:00Z","issuer":{"friendly_name":"Let's Encrypt"}},
			{"id":"5678","dns_names":["mail.example.com"],"not_before":"","not_after":"","issuer":{"friendly_name":""}}
		]`))
	}))
	defer ts.Close()

	src := newTestSource(ts.URL, "")
	result, err := src.Run(context.Background(), *domain.NewTarget("example.com"))
	testutil.AssertNoError(t, err, "run succeeds")

	testutil.AssertEqual(t, len(result.Candidates), 2, "wildcards and out-of-scope dropped")
	testutil.AssertEqual(t, result.Candidates[0].Name, "api.example.com", "first candidate")
	testutil.AssertEqual(t, result.Candidates[0].Cert.Issuer, "Let's Encrypt", "issuer from expanded field")
	testutil.AssertEqual(t, result.Candidates[0].Cert.CertificateID, "1234", "issuance id as certificate id")
}

func TestCertSpotter_Run_SendsAPIKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.Header.Get("Authorization"), "Bearer sekret", "bearer token header")
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	src := newTestSource(ts.URL, "sekret")
	_, err := src.Run(context.Background(), *domain.NewTarget("example.com"))
	testutil.AssertNoError(t, err, "run succeeds")
}

func TestCertSpotter_Run_RateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	src := newTestSource(ts.URL, "")
	_, err := src.Run(context.Background(), *domain.NewTarget("example.com"))
	testutil.AssertError(t, err, "quota exhaustion surfaces as error")
}

func TestCertSpotter_Registered(t *testing.T) {
	testutil.AssertTrue(t, registry.Global().IsRegistered("certspotter"), "init registers the source")
}
