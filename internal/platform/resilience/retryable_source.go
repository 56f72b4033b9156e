// internal/platform/resilience/retryable_source.go
package resilience

import (
	"context"
	"math"
	"time"

	"infrascope/internal/core/domain"
	"infrascope/internal/core/ports"
	"infrascope/internal/platform/logx"
)

// RetryableSource envuelve un Source con lógica de retry y backoff
// exponencial. Un fallo de la fuente subyacente se reintenta hasta maxRetries
// veces antes de propagarse al orchestrator.
type RetryableSource struct {
	source            ports.Source
	maxRetries        int
	backoffBase       time.Duration
	backoffMultiplier float64
	logger            logx.Logger
}

// NewRetryableSource crea un nuevo RetryableSource.
func NewRetryableSource(source ports.Source, maxRetries int, backoffBase time.Duration, backoffMultiplier float64, logger logx.Logger) *RetryableSource {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if backoffBase <= 0 {
		backoffBase = 1 * time.Second
	}
	if backoffMultiplier < 1.0 {
		backoffMultiplier = 2.0
	}

	return &RetryableSource{
		source:            source,
		maxRetries:        maxRetries,
		backoffBase:       backoffBase,
		backoffMultiplier: backoffMultiplier,
		logger:            logger.With("component", "retryable-source", "source", source.Name()),
	}
}

// Name retorna el nombre del source subyacente.
func (r *RetryableSource) Name() string {
	return r.source.Name()
}

// Run ejecuta el source con reintentos.
func (r *RetryableSource) Run(ctx context.Context, target domain.Target) (*ports.SourceResult, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			r.logger.Info("retrying source", "attempt", attempt, "max_retries", r.maxRetries)
		}

		result, err := r.source.Run(ctx, target)
		if err == nil {
			if attempt > 0 {
				r.logger.Info("source succeeded after retry", "attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		r.logger.Warn("source failed", "attempt", attempt+1, "error", err.Error())

		if attempt >= r.maxRetries {
			break
		}
		if ctx.Err() != nil {
			r.logger.Warn("context cancelled, aborting retries")
			return nil, ctx.Err()
		}
		if err := r.sleep(ctx, attempt); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// Close cierra el source subyacente.
func (r *RetryableSource) Close() error {
	return r.source.Close()
}

// sleep aplica el backoff exponencial entre reintentos.
func (r *RetryableSource) sleep(ctx context.Context, attempt int) error {
	backoff := time.Duration(float64(r.backoffBase) * math.Pow(r.backoffMultiplier, float64(attempt)))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}
