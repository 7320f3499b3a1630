package fusion

import "time"

// RetryPolicy bounds retries of transient generation failures. The zero value
// never retries.
type RetryPolicy struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

const (
	DefaultInitialBackoff    = 2 * time.Second
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// NewRetryPolicy returns a policy with default backoff and the given retry budget.
func NewRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:        maxRetries,
		InitialBackoff:    DefaultInitialBackoff,
		MaxBackoff:        DefaultMaxBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
	}
}

// Backoff is the wait before retry number attempt (0-based), capped at MaxBackoff.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	base := p.InitialBackoff
	if base <= 0 {
		base = DefaultInitialBackoff
	}
	mult := p.BackoffMultiplier
	if mult < 1 {
		mult = 1
	}
	f := 1.0
	for i := 0; i < attempt; i++ {
		f *= mult
	}
	d := time.Duration(float64(base) * f)
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	return d
}
