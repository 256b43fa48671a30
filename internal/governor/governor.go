package governor

import (
	"context"
	"sync"
	"time"
)

const (
	basePenalty = 500 * time.Millisecond
	maxPenalty  = 30 * time.Second
	decayAfter  = 3 // consecutive successes before the penalty halves
)

// Governor throttles outbound probe traffic. A token bucket bounds the
// steady request rate; on top of it, a penalty delay grows multiplicatively
// whenever a probe comes back rate-limited and decays again after a run of
// successes. Acquire is the only blocking call and is safe for concurrent
// use.
type Governor struct {
	rate  float64 // tokens per second
	burst float64

	mu        sync.Mutex
	tokens    float64
	last      time.Time
	notBefore time.Time
	penalty   time.Duration
	successes int
}

func New(rps float64, burst int) *Governor {
	if rps <= 0 {
		rps = 5
	}
	if burst < 1 {
		burst = 1
	}
	return &Governor{
		rate:   rps,
		burst:  float64(burst),
		tokens: float64(burst),
		last:   time.Now(),
	}
}

// Acquire blocks until one request may be sent, or until ctx is done. The
// mutex is never held while sleeping.
func (g *Governor) Acquire(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		g.mu.Lock()
		now := time.Now()
		g.refill(now)

		var wait time.Duration
		switch {
		case now.Before(g.notBefore):
			wait = g.notBefore.Sub(now)
		case g.tokens < 1:
			wait = time.Duration((1 - g.tokens) / g.rate * float64(time.Second))
		default:
			g.tokens--
			g.notBefore = now.Add(g.penalty)
			g.mu.Unlock()
			return nil
		}
		g.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// ReportThrottled records a rate-limited response: the penalty delay doubles
// (capped) and applies immediately to the next acquisition.
func (g *Governor) ReportThrottled() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.penalty == 0 {
		g.penalty = basePenalty
	} else if g.penalty < maxPenalty {
		g.penalty *= 2
		if g.penalty > maxPenalty {
			g.penalty = maxPenalty
		}
	}
	g.successes = 0
	g.notBefore = time.Now().Add(g.penalty)
}

// ReportSuccess decays the penalty after enough consecutive successes.
func (g *Governor) ReportSuccess() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.penalty == 0 {
		return
	}
	g.successes++
	if g.successes < decayAfter {
		return
	}
	g.successes = 0
	g.penalty /= 2
	if g.penalty < basePenalty {
		g.penalty = 0
	}
}

// Delay returns the current penalty delay between requests.
func (g *Governor) Delay() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.penalty
}

func (g *Governor) refill(now time.Time) {
	elapsed := now.Sub(g.last).Seconds()
	g.tokens = minFloat(g.burst, g.tokens+elapsed*g.rate)
	g.last = now
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
