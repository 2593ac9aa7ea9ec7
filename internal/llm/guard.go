package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"invoice-backend/internal/shared/telemetry"
)

// RetryAfter is how long callers are told to wait while the breaker is open.
const RetryAfter = 30 * time.Second

// GuardConfig tunes the outbound protection around a Generator.
type GuardConfig struct {
	Name                string
	MaxRPS              float64
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

func (c GuardConfig) normalize() GuardConfig {
	if c.Name == "" {
		c.Name = "llm"
	}
	if c.BreakerMinRequests == 0 {
		c.BreakerMinRequests = 5
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		c.BreakerFailureRatio = 0.6
	}
	if c.BreakerOpenTimeout <= 0 {
		c.BreakerOpenTimeout = RetryAfter
	}
	return c
}

// Guarded wraps a Generator with a circuit breaker and an outbound rate
// limit. It makes exactly one attempt per call.
type Guarded struct {
	inner   Generator
	breaker *gobreaker.CircuitBreaker[string]
	limiter *rate.Limiter
}

func NewGuarded(inner Generator, cfg GuardConfig) *Guarded {
	cfg = cfg.normalize()

	limit := rate.Inf
	if cfg.MaxRPS > 0 {
		limit = rate.Limit(cfg.MaxRPS)
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			telemetry.Warn("llm.breaker.state", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	}

	return &Guarded{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (g *Guarded) Generate(ctx context.Context, prompt string, attachments ...Attachment) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return g.breaker.Execute(func() (string, error) {
		return g.inner.Generate(ctx, prompt, attachments...)
	})
}

func (g *Guarded) TextOnly() bool {
	return !AcceptsAttachments(g.inner)
}

// State reports the breaker state for health output.
func (g *Guarded) State() string {
	return g.breaker.State().String()
}

// IsCircuitOpen reports whether err came from a tripped breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
