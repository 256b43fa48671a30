package probe

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/thezakman/tapik/internal/catalog"
	"github.com/thezakman/tapik/internal/domain"
)

// RetryProber wraps a Prober and re-issues probes that failed at the
// transport level. Classified outcomes, including rate limits and denials,
// pass through untouched; only NETWORK_ERROR is considered transient.
type RetryProber struct {
	Inner    Prober
	Attempts int
	Backoff  time.Duration // initial interval, grows exponentially
}

func (r *RetryProber) Probe(ctx context.Context, key string, ep catalog.Endpoint) (domain.Outcome, error) {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	if r.Backoff > 0 {
		bo.InitialInterval = r.Backoff
	}

	var last domain.Outcome
	for i := 0; i < attempts; i++ {
		out, err := r.Inner.Probe(ctx, key, ep)
		if err != nil {
			return domain.Outcome{}, err
		}
		if out.Status != domain.StatusNetworkError {
			return out, nil
		}
		last = out

		if i == attempts-1 {
			break
		}
		next := bo.NextBackOff()
		if next == backoff.Stop {
			break
		}
		timer := time.NewTimer(next)
		select {
		case <-ctx.Done():
			timer.Stop()
			// The pair did execute; hand back what we have.
			return last, nil
		case <-timer.C:
		}
	}
	return last, nil
}
