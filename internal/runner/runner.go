package runner

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thezakman/tapik/internal/catalog"
	"github.com/thezakman/tapik/internal/domain"
	"github.com/thezakman/tapik/internal/probe"
)

// Selection is the validated input of a run: which keys to test against
// which catalog endpoints, both in caller order.
type Selection struct {
	Keys      []string
	Endpoints []catalog.Endpoint
}

// ConfigError is a pre-flight failure: nothing was dispatched and nothing
// was sent over the network.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Reason }

// Runner executes the Cartesian product of keys and endpoints through a
// bounded worker pool. Per-pair failures become outcomes; only pre-flight
// configuration problems fail the run itself.
type Runner struct {
	Prober      probe.Prober
	Logger      *zap.Logger
	Concurrency int
}

func New(p probe.Prober, logger *zap.Logger, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Prober: p, Logger: logger, Concurrency: concurrency}
}

// Run dispatches every (key, endpoint) pair and collects outcomes. On
// cancellation no new pairs are dispatched, in-flight probes finish or time
// out, and the partial matrix is returned with Incomplete set.
func (r *Runner) Run(ctx context.Context, sel Selection) (*domain.Matrix, error) {
	if err := validate(sel); err != nil {
		return nil, err
	}

	m := domain.NewMatrix(uuid.NewString(), sel.Keys)
	r.Logger.Info("run_started",
		zap.String("run_id", m.RunID),
		zap.Int("keys", len(sel.Keys)),
		zap.Int("endpoints", len(sel.Endpoints)),
		zap.Int("concurrency", r.Concurrency),
	)

	sem := make(chan struct{}, r.Concurrency)
	var wg sync.WaitGroup
	var skipped atomic.Bool

dispatch:
	for _, key := range sel.Keys {
		for _, ep := range sel.Endpoints {
			select {
			case <-ctx.Done():
				skipped.Store(true)
				break dispatch
			case sem <- struct{}{}:
			}

			wg.Add(1)
			k, e := key, ep
			go func() {
				defer wg.Done()
				defer func() { <-sem }()

				out, err := r.Prober.Probe(ctx, k, e)
				if err != nil {
					// Cancelled before the request went out; the pair has
					// no outcome and the run is partial.
					skipped.Store(true)
					return
				}
				if err := m.Put(out); err != nil {
					r.Logger.Warn("run_duplicate_outcome", zap.Error(err))
				}
			}()
		}
	}

	wg.Wait()
	m.FinishedAt = time.Now().UTC()
	m.Incomplete = skipped.Load() || ctx.Err() != nil

	r.Logger.Info("run_finished",
		zap.String("run_id", m.RunID),
		zap.Int("outcomes", m.Size()),
		zap.Bool("incomplete", m.Incomplete),
	)
	return m, nil
}

func validate(sel Selection) error {
	if len(sel.Keys) == 0 {
		return &ConfigError{Reason: "empty key set"}
	}
	for _, k := range sel.Keys {
		if strings.TrimSpace(k) == "" {
			return &ConfigError{Reason: "key list contains a blank key"}
		}
	}
	if len(sel.Endpoints) == 0 {
		return &ConfigError{Reason: "empty endpoint selection"}
	}
	return nil
}
