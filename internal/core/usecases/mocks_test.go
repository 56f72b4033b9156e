package usecases

import (
	"context"
	"sync"
	"time"

	"infrascope/internal/core/domain"
	"infrascope/internal/core/ports"
)

// mockSource es una fuente de discovery de prueba.
type mockSource struct {
	name       string
	candidates []string
	certs      map[string]*domain.CertificateInfo
	err        error
	delay      time.Duration
	runs       int
	mu         sync.Mutex
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Run(ctx context.Context, target domain.Target) (*ports.SourceResult, error) {
	m.mu.Lock()
	m.runs++
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}

	result := ports.NewSourceResult(m.name)
	for _, c := range m.candidates {
		result.AddCandidate(c, m.certs[c])
	}
	return result, nil
}

func (m *mockSource) Close() error { return nil }

// mockResolver responde desde tablas fijas name|type -> records.
type mockResolver struct {
	mu      sync.Mutex
	answers map[string][]domain.DNSRecord
	fail    map[string]bool
	queries int
}

func newMockResolver() *mockResolver {
	return &mockResolver{
		answers: make(map[string][]domain.DNSRecord),
		fail:    make(map[string]bool),
	}
}

func (m *mockResolver) addAnswer(name string, t domain.RecordType, records ...domain.DNSRecord) {
	m.answers[name+"|"+string(t)] = records
}

func (m *mockResolver) Query(ctx context.Context, name string, t domain.RecordType) []domain.DNSRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++

	key := name + "|" + string(t)
	if m.fail[key] {
		return nil
	}
	if recs, ok := m.answers[key]; ok {
		return recs
	}
	return []domain.DNSRecord{}
}

func (m *mockResolver) Queries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries
}

// mockWalker retorna cadenas y findings precargados.
type mockWalker struct {
	chains    map[string][]domain.CNAMELink
	takeovers map[string]*domain.TakeoverFinding
	wildcard  bool
}

func newMockWalker() *mockWalker {
	return &mockWalker{
		chains:    make(map[string][]domain.CNAMELink),
		takeovers: make(map[string]*domain.TakeoverFinding),
	}
}

func (m *mockWalker) FollowChain(ctx context.Context, hostname string) []domain.CNAMELink {
	return m.chains[hostname]
}

func (m *mockWalker) CheckTakeover(ctx context.Context, subdomain string, chain []domain.CNAMELink) *domain.TakeoverFinding {
	return m.takeovers[subdomain]
}

func (m *mockWalker) DetectWildcard(ctx context.Context, apex string) bool {
	return m.wildcard
}

// mockASN resuelve IPs desde una tabla fija.
type mockASN struct {
	records map[string]*domain.ASNInfo
}

func (m *mockASN) Resolve(ctx context.Context, ip string) *domain.ASNInfo {
	if info, ok := m.records[ip]; ok {
		return info
	}
	return domain.UnknownASNInfo()
}

// recordingObserver captura los eventos en el orden de entrega.
type recordingObserver struct {
	mu        sync.Mutex
	completed []string
	sources   []string
	stats     []domain.AnalysisStats
}

func (r *recordingObserver) OnSubdomainCompleted(name string, sources []string, analysis *domain.SubdomainAnalysis) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, name)
}

func (r *recordingObserver) OnStatsUpdated(stats domain.AnalysisStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = append(r.stats, stats)
}

func (r *recordingObserver) OnSourceFinished(source string, outcome domain.SourceOutcome, candidates int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
}

func (r *recordingObserver) completedOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.completed...)
}

// panicObserver entra en pánico en cada evento de subdominio.
type panicObserver struct {
	ports.NoopObserver
}

func (panicObserver) OnSubdomainCompleted(string, []string, *domain.SubdomainAnalysis) {
	panic("broken subscriber")
}
