package asn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"infrascope/internal/platform/httpclient"
	"infrascope/internal/platform/logx"
	"infrascope/internal/testutil"
)

func newTestClassifier(providers []Provider) *Classifier {
	return NewClassifier(Options{
		Providers: providers,
		HTTP:      httpclient.Config{Timeout: 2 * time.Second},
		Logger:    logx.NewSilent(),
	})
}

func TestClassifier_Resolve_FirstProviderWins(t *testing.T) {
	var second atomic.Int64
	ts1 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","as":"AS15169 Google LLC","isp":"Google LLC","countryCode":"US","country":"United States","regionName":"California","city":"Mountain View"}`))
	}))
	defer ts1.Close()
	ts2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		second.Add(1)
		w.Write([]byte(`{"success":true,"connection":{"asn":1,"isp":"ShouldNotBeUsed"}}`))
	}))
	defer ts2.Close()

	c := newTestClassifier([]Provider{
		{Name: "ip-api", URL: func(ip string) string { return ts1.URL + "/" + ip }, Parse: parseIPAPI},
		{Name: "ipwhois", URL: func(ip string) string { return ts2.URL + "/" + ip }, Parse: parseIPWhois},
	})

	info := c.Resolve(context.Background(), "8.8.8.8")
	testutil.AssertEqual(t, info.ASN, "AS15169", "ASN token extracted from combined field")
	testutil.AssertEqual(t, info.ISP, "Google LLC", "organization accepted")
	testutil.AssertEqual(t, info.Country, "US", "country code normalized")
	testutil.AssertEqual(t, int(second.Load()), 0, "later providers not consulted after acceptance")
}

func TestClassifier_Resolve_FallsThroughOnFailure(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer failing.Close()
	noOrg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Bien formado pero sin organización: no aceptable.
		w.Write([]byte(`{"status":"success","countryCode":"ES"}`))
	}))
	defer noOrg.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"country_code":"DE","country":"Germany","connection":{"asn":24940,"isp":"Hetzner Online GmbH"}}`))
	}))
	defer good.Close()

	c := newTestClassifier([]Provider{
		{Name: "ip-api", URL: func(ip string) string { return failing.URL + "/" + ip }, Parse: parseIPAPI},
		{Name: "ip-api-2", URL: func(ip string) string { return noOrg.URL + "/" + ip }, Parse: parseIPAPI},
		{Name: "ipwhois", URL: func(ip string) string { return good.URL + "/" + ip }, Parse: parseIPWhois},
	})

	info := c.Resolve(context.Background(), "88.99.1.1")
	testutil.AssertEqual(t, info.ASN, "AS24940", "numeric ASN formatted")
	testutil.AssertEqual(t, info.ISP, "Hetzner Online GmbH", "third provider accepted")
}

func TestClassifier_Resolve_UnknownWhenExhausted(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	c := newTestClassifier([]Provider{
		{Name: "ip-api", URL: func(ip string) string { return failing.URL + "/" + ip }, Parse: parseIPAPI},
	})

	info := c.Resolve(context.Background(), "203.0.113.9")
	testutil.AssertNotNil(t, info, "never nil even on total failure")
	testutil.AssertTrue(t, info.IsUnknown(), "unknown record on exhaustion")
	testutil.AssertEqual(t, info.ASN, "Unknown", "unknown placeholder")
}

func TestClassifier_Resolve_EmptyIP(t *testing.T) {
	c := newTestClassifier(DefaultProviders())
	info := c.Resolve(context.Background(), "")
	testutil.AssertTrue(t, info.IsUnknown(), "empty IP resolves to unknown without network calls")
}

func TestClassifier_Resolve_Caches(t *testing.T) {
	var hits atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"status":"success","as":"AS13335 Cloudflare","isp":"Cloudflare, Inc."}`))
	}))
	defer ts.Close()

	c := newTestClassifier([]Provider{
		{Name: "ip-api", URL: func(ip string) string { return ts.URL + "/" + ip }, Parse: parseIPAPI},
	})

	c.Resolve(context.Background(), "1.1.1.1")
	c.Resolve(context.Background(), "1.1.1.1")
	testutil.AssertEqual(t, int(hits.Load()), 1, "second lookup served from cache")
}

func TestParseProviders_MalformedJSON(t *testing.T) {
	if _, err := parseIPAPI([]byte("not json")); err == nil {
		t.Error("parseIPAPI should reject malformed JSON")
	}
	if _, err := parseIPWhois([]byte(`{"success":false}`)); err == nil {
		t.Error("parseIPWhois should reject unsuccessful responses")
	}
	if _, err := parseIPAPICo([]byte(`{"error":true}`)); err == nil {
		t.Error("parseIPAPICo should reject error responses")
	}
}
