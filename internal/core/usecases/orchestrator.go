// internal/core/usecases/orchestrator.go
package usecases

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"infrascope/internal/classify"
	"infrascope/internal/core/domain"
	"infrascope/internal/core/ports"
	"infrascope/internal/platform/logx"
)

// defaultDiscoveryTimeout acota cuánto bloquea la Fase 1 el progreso del run.
// El timeout corta la espera, no las requests en vuelo: resultados que llegan
// tarde siguen entrando en la cola y se procesan en la Fase 2.
const defaultDiscoveryTimeout = 90 * time.Second

// DNSResolver es lo que el orchestrator necesita del resolver DoH.
type DNSResolver interface {
	Query(ctx context.Context, name string, recordType domain.RecordType) []domain.DNSRecord
	Queries() int
}

// ChainWalker es lo que el orchestrator necesita del walker CNAME.
type ChainWalker interface {
	FollowChain(ctx context.Context, hostname string) []domain.CNAMELink
	CheckTakeover(ctx context.Context, subdomain string, chain []domain.CNAMELink) *domain.TakeoverFinding
	DetectWildcard(ctx context.Context, apex string) bool
}

// ASNResolver es lo que el orchestrator necesita del classifier de ASN.
type ASNResolver interface {
	Resolve(ctx context.Context, ip string) *domain.ASNInfo
}

// Orchestrator coordina el run completo: Fase 1 lanza todas las fuentes de
// discovery en paralelo contra un timeout global; Fase 2 drena la cola de
// forma estrictamente secuencial, resolviendo y clasificando cada subdominio
// y notificando a los observers antes de pasar al siguiente. El drain
// secuencial es deliberado: controla el ritmo de requests DNS/ASN y garantiza
// orden determinista de merge y notificación.
type Orchestrator struct {
	sources   []ports.Source
	resolver  DNSResolver
	walker    ChainWalker
	asn       ASNResolver
	observers []ports.Observer
	logger    logx.Logger

	queue            *DiscoveryQueue
	discoveryTimeout time.Duration
}

// OrchestratorOptions configura el orchestrator.
type OrchestratorOptions struct {
	Sources          []ports.Source
	Resolver         DNSResolver
	Walker           ChainWalker
	ASN              ASNResolver
	Observers        []ports.Observer
	Logger           logx.Logger
	DiscoveryTimeout time.Duration
}

// NewOrchestrator crea una nueva instancia del orchestrator.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.DiscoveryTimeout <= 0 {
		opts.DiscoveryTimeout = defaultDiscoveryTimeout
	}

	return &Orchestrator{
		sources:          opts.Sources,
		resolver:         opts.Resolver,
		walker:           opts.Walker,
		asn:              opts.ASN,
		observers:        opts.Observers,
		logger:           opts.Logger.With("component", "orchestrator"),
		queue:            NewDiscoveryQueue(),
		discoveryTimeout: opts.DiscoveryTimeout,
	}
}

// Run ejecuta el análisis completo contra el target.
func (o *Orchestrator) Run(ctx context.Context, target *domain.Target) (*domain.AnalysisResult, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if len(o.sources) == 0 {
		return nil, domain.ErrNoSourcesAvailable
	}

	consolidator := NewConsolidator(target.Root)
	result := consolidator.Result()

	o.logger.Info("starting analysis",
		"target", target.Root,
		"sources", len(o.sources),
		"discovery_timeout", o.discoveryTimeout,
	)

	// El dominio apex cuenta siempre como candidato aunque ninguna fuente
	// lo reporte.
	o.queue.Add(target.Root, "target", nil)

	outcomes, timedOut, discoveryDone := o.runDiscovery(ctx, target, result)
	if timedOut {
		result.Partial = true
	}

	o.checkPosture(ctx, target, consolidator)
	o.drainQueue(ctx, target, consolidator)

	if timedOut {
		// El timeout corta la espera, no las fuentes en vuelo: sus candidatos
		// tardíos siguen entrando en la cola y también se procesan. Esperar el
		// join all-settled antes de finalizar garantiza además que ninguna
		// goroutine de Fase 1 escriba en el resultado tras retornar.
		select {
		case <-discoveryDone:
			o.drainQueue(ctx, target, consolidator)
		case <-ctx.Done():
		}
	}

	stats := o.queue.Stats()
	stats.DNSQueries = o.resolver.Queries()
	stats.SourceOutcomes = outcomes
	result.Stats = stats
	result.Finalize()

	o.logger.Info("analysis finished",
		"target", target.Root,
		"subdomains", stats.Total,
		"services", len(result.Services),
		"dns_queries", stats.DNSQueries,
		"duration", result.Duration,
	)
	return result, nil
}

// runDiscovery ejecuta la Fase 1: todas las fuentes en paralelo con join
// all-settled, de forma que el fallo o timeout de una no cancela las demás.
// Retorna el outcome por fuente, si se alcanzó el timeout global y el canal
// que se cierra cuando todas las fuentes han terminado de verdad.
func (o *Orchestrator) runDiscovery(ctx context.Context, target *domain.Target, result *domain.AnalysisResult) (map[string]domain.SourceOutcome, bool, <-chan struct{}) {
	var (
		mu       sync.Mutex
		outcomes = make(map[string]domain.SourceOutcome)
		wg       sync.WaitGroup
	)
	for _, src := range o.sources {
		outcomes[src.Name()] = domain.SourceOutcomeTimedOut
	}

	for _, src := range o.sources {
		wg.Add(1)
		go func(src ports.Source) {
			defer wg.Done()

			sourceResult, err := src.Run(ctx, *target)
			if err != nil {
				mu.Lock()
				outcomes[src.Name()] = domain.SourceOutcomeFailed
				result.AddError(src.Name(), err.Error(), false)
				mu.Unlock()

				o.logger.Warn("discovery source failed", "source", src.Name(), "error", err.Error())
				o.notifySourceFinished(src.Name(), domain.SourceOutcomeFailed, 0)
				return
			}

			added := o.enqueueCandidates(target, src.Name(), sourceResult)

			mu.Lock()
			for _, w := range sourceResult.Warnings {
				result.AddWarning(src.Name(), w)
			}
			outcomes[src.Name()] = domain.SourceOutcomeSucceeded
			mu.Unlock()

			o.logger.Info("discovery source finished",
				"source", src.Name(),
				"candidates", len(sourceResult.Candidates),
				"accepted", added,
			)
			o.notifySourceFinished(src.Name(), domain.SourceOutcomeSucceeded, added)
		}(src)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(o.discoveryTimeout)
	defer timer.Stop()

	select {
	case <-done:
		return snapshotOutcomes(&mu, outcomes), false, done
	case <-timer.C:
		o.logger.Warn("discovery timeout reached, proceeding with gathered candidates")
		mu.Lock()
		result.AddWarning("orchestrator", "discovery phase hit the global timeout; results may be partial")
		mu.Unlock()
		return snapshotOutcomes(&mu, outcomes), true, done
	case <-ctx.Done():
		return snapshotOutcomes(&mu, outcomes), true, done
	}
}

func snapshotOutcomes(mu *sync.Mutex, outcomes map[string]domain.SourceOutcome) map[string]domain.SourceOutcome {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]domain.SourceOutcome, len(outcomes))
	for k, v := range outcomes {
		out[k] = v
	}
	return out
}

// enqueueCandidates filtra los candidatos de una fuente por scope y los mete
// en la cola. Retorna cuántos se aceptaron.
func (o *Orchestrator) enqueueCandidates(target *domain.Target, source string, sr *ports.SourceResult) int {
	added := 0
	for _, candidate := range sr.Candidates {
		if !target.IsInScope(candidate.Name) {
			continue
		}
		if err := o.queue.Add(candidate.Name, source, candidate.Cert); err != nil {
			o.logger.Debug("candidate rejected", "source", source, "candidate", candidate.Name, "error", err.Error())
			continue
		}
		added++
	}
	return added
}

// drainQueue ejecuta la Fase 2: pop secuencial en orden FIFO, análisis
// completo y notificación síncrona de cada subdominio antes del siguiente.
func (o *Orchestrator) drainQueue(ctx context.Context, target *domain.Target, consolidator *Consolidator) {
	for {
		if ctx.Err() != nil {
			// Run cancelado: lo pendiente queda genuinamente pendiente, sin
			// drops silenciosos ni entries varados en processing.
			consolidator.Result().Partial = true
			return
		}
		entry, err := o.queue.Next()
		if err != nil {
			return
		}

		analysis := o.analyzeSubdomain(ctx, target, entry)
		o.queue.MarkCompleted(entry.Name, analysis)
		o.consolidate(consolidator, entry, analysis)

		o.notifyCompleted(entry.Name, entry.Sources, analysis)
		o.notifyStats(o.queue.Stats())
	}
}

// analyzeSubdomain resuelve y clasifica un subdominio. Nunca descarta: un
// fallo de resolución produce un análisis en estado error con el mensaje
// embebido.
func (o *Orchestrator) analyzeSubdomain(ctx context.Context, target *domain.Target, entry *domain.DiscoveryEntry) *domain.SubdomainAnalysis {
	analysis := domain.NewSubdomainAnalysis(entry.Name, entry.Sources)

	records := o.resolver.Query(ctx, entry.Name, domain.RecordTypeA)
	if records == nil {
		analysis.Status = domain.AnalysisStatusError
		analysis.Error = "resolution failed: all DNS servers exhausted"
		return analysis
	}

	addresses := filterRecords(records, domain.RecordTypeA)
	cnames := filterRecords(records, domain.RecordTypeCNAME)
	if len(addresses) > 0 {
		analysis.AddRecords(domain.RecordTypeA, addresses)
		analysis.IP = addresses[0].Value
	}
	if len(cnames) > 0 {
		analysis.AddRecords(domain.RecordTypeCNAME, cnames)
	}

	// historical: el nombre sólo existe en logs de certificados
	if len(addresses) == 0 && len(cnames) == 0 {
		analysis.Status = domain.AnalysisStatusHistorical
		return analysis
	}

	if len(cnames) > 0 {
		chain := o.walker.FollowChain(ctx, entry.Name)
		if len(chain) == 0 {
			// La respuesta A traía el CNAME pero la query CNAME directa
			// falló: reconstruir el primer salto desde lo que ya sabemos.
			chain = []domain.CNAMELink{{From: entry.Name, To: cnames[0].Value, TTL: cnames[0].TTL}}
		}
		analysis.CNAMEChain = chain

		// Un CNAME que termina en el dominio principal sirve contenido
		// idéntico: se marca y se excluye de análisis más profundo.
		if target.IsMainDomain(chain[len(chain)-1].To) {
			analysis.IsRedirectToMain = true
			analysis.Status = domain.AnalysisStatusRedirect
			return analysis
		}

		analysis.PrimaryService, analysis.Infrastructure = classify.Chain(chain)
		analysis.Takeover = o.walker.CheckTakeover(ctx, entry.Name, chain)
	}

	// El enriquecimiento de vendor escribe sobre el mismo registro que
	// produjo la IP, nunca sobre una copia.
	if analysis.IP != "" {
		analysis.ASN = o.asn.Resolve(ctx, analysis.IP)
		analysis.Vendor = classify.Vendor(analysis.ASN)
	}

	analysis.Status = domain.AnalysisStatusActive
	return analysis
}

// consolidate incorpora un análisis terminado a las colecciones del run.
func (o *Orchestrator) consolidate(consolidator *Consolidator, entry *domain.DiscoveryEntry, analysis *domain.SubdomainAnalysis) {
	consolidator.MergeSubdomain(analysis)

	if analysis.PrimaryService != nil {
		consolidator.MergeService(
			analysis.PrimaryService,
			analysis.Records[domain.RecordTypeCNAME],
			analysis.Infrastructure,
			entry.Name,
		)
	}
	if analysis.Takeover != nil {
		consolidator.AddTakeover(analysis.Takeover)
	}
	if analysis.Status == domain.AnalysisStatusHistorical {
		record := domain.NewHistoricalRecord(entry.Name, firstSource(entry.Sources), certOrEmpty(o.queue.Cert(entry.Name)))
		consolidator.MergeHistorical(record)
	}
}

// checkPosture evalúa la postura DNS/email del dominio apex: SPF y DMARC en
// TXT, y presencia de DNS wildcard que devalúa las señales de subdominios.
func (o *Orchestrator) checkPosture(ctx context.Context, target *domain.Target, consolidator *Consolidator) {
	txt := o.resolver.Query(ctx, target.Root, domain.RecordTypeTXT)
	if txt != nil && !hasTXTPrefix(txt, "v=spf1") {
		consolidator.AddPosture(domain.PostureFinding{
			Kind:        "spf-missing",
			Severity:    "medium",
			Description: "no SPF record found on the apex domain; mail spoofing is not restricted",
		})
	}

	dmarc := o.resolver.Query(ctx, "_dmarc."+target.Root, domain.RecordTypeTXT)
	if dmarc != nil && !hasTXTPrefix(dmarc, "v=DMARC1") {
		consolidator.AddPosture(domain.PostureFinding{
			Kind:        "dmarc-missing",
			Severity:    "medium",
			Description: "no DMARC policy found; spoofed mail will not be rejected or reported",
		})
	}

	if o.walker.DetectWildcard(ctx, target.Root) {
		consolidator.AddPosture(domain.PostureFinding{
			Kind:        "wildcard-dns",
			Severity:    "info",
			Description: "the domain resolves arbitrary labels (wildcard DNS); per-subdomain signals are weakened",
		})
	}
}

// notifyCompleted entrega el evento a cada observer aislando sus fallos: un
// observer que entra en pánico no detiene el drain ni afecta al resto.
func (o *Orchestrator) notifyCompleted(name string, sources []string, analysis *domain.SubdomainAnalysis) {
	for _, observer := range o.observers {
		o.safeNotify(func() { observer.OnSubdomainCompleted(name, sources, analysis) })
	}
}

func (o *Orchestrator) notifyStats(stats domain.AnalysisStats) {
	for _, observer := range o.observers {
		o.safeNotify(func() { observer.OnStatsUpdated(stats) })
	}
}

func (o *Orchestrator) notifySourceFinished(source string, outcome domain.SourceOutcome, candidates int) {
	for _, observer := range o.observers {
		o.safeNotify(func() { observer.OnSourceFinished(source, outcome, candidates) })
	}
}

func (o *Orchestrator) safeNotify(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Err(fmt.Errorf("observer panicked: %v", r))
		}
	}()
	fn()
}

func filterRecords(records []domain.DNSRecord, t domain.RecordType) []domain.DNSRecord {
	out := make([]domain.DNSRecord, 0, len(records))
	for _, rec := range records {
		if rec.Type == t {
			out = append(out, rec)
		}
	}
	return out
}

func hasTXTPrefix(records []domain.DNSRecord, prefix string) bool {
	for _, rec := range records {
		if strings.HasPrefix(strings.TrimSpace(rec.Value), prefix) {
			return true
		}
	}
	return false
}

func firstSource(sources []string) string {
	if len(sources) == 0 {
		return "unknown"
	}
	return sources[0]
}

func certOrEmpty(cert *domain.CertificateInfo) domain.CertificateInfo {
	if cert == nil {
		return domain.CertificateInfo{}
	}
	return *cert
}
