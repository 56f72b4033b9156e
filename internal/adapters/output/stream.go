// internal/adapters/output/stream.go
package output

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"infrascope/internal/core/domain"
	"infrascope/internal/platform/logx"
)

// StreamObserver entrega resultados incrementales como NDJSON: un evento por
// línea a medida que el orchestrator completa cada subdominio. Permite a un
// consumer externo (pipe, UI) ver progreso en tiempo real sin esperar al
// resultado consolidado.
type StreamObserver struct {
	mu     sync.Mutex
	w      io.Writer
	enc    *json.Encoder
	logger logx.Logger
}

// NewStreamObserver crea un observer de streaming sobre el writer dado.
func NewStreamObserver(w io.Writer, logger logx.Logger) *StreamObserver {
	return &StreamObserver{
		w:      w,
		enc:    json.NewEncoder(w),
		logger: logger.With("component", "stream-observer"),
	}
}

// streamEvent es la envoltura de cada línea NDJSON.
type streamEvent struct {
	Event     string                    `json:"event"`
	Timestamp time.Time                 `json:"timestamp"`
	Subdomain *domain.SubdomainAnalysis `json:"subdomain,omitempty"`
	Source    string                    `json:"source,omitempty"`
	Outcome   domain.SourceOutcome      `json:"outcome,omitempty"`
	Count     int                       `json:"count,omitempty"`
	Stats     *domain.AnalysisStats     `json:"stats,omitempty"`
}

// OnSubdomainCompleted emite el análisis completo del subdominio.
func (s *StreamObserver) OnSubdomainCompleted(name string, sources []string, analysis *domain.SubdomainAnalysis) {
	s.emit(streamEvent{
		Event:     "subdomain_completed",
		Timestamp: time.Now(),
		Subdomain: analysis,
	})
}

// OnStatsUpdated emite el snapshot de progreso.
func (s *StreamObserver) OnStatsUpdated(stats domain.AnalysisStats) {
	s.emit(streamEvent{
		Event:     "stats",
		Timestamp: time.Now(),
		Stats:     &stats,
	})
}

// OnSourceFinished emite el cierre de una fuente de discovery.
func (s *StreamObserver) OnSourceFinished(source string, outcome domain.SourceOutcome, candidates int) {
	s.emit(streamEvent{
		Event:     "source_finished",
		Timestamp: time.Now(),
		Source:    source,
		Outcome:   outcome,
		Count:     candidates,
	})
}

func (s *StreamObserver) emit(ev streamEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(ev); err != nil {
		s.logger.Warn("failed to write stream event", "event", ev.Event, "error", err.Error())
	}
}
