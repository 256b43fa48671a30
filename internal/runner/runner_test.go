package runner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thezakman/tapik/internal/catalog"
	"github.com/thezakman/tapik/internal/domain"
	"github.com/thezakman/tapik/internal/governor"
	"github.com/thezakman/tapik/internal/probe"
)

// --- fakes ---

type instantProber struct {
	calls atomic.Int64
}

func (p *instantProber) Probe(ctx context.Context, key string, ep catalog.Endpoint) (domain.Outcome, error) {
	p.calls.Add(1)
	return domain.Outcome{EndpointID: ep.ID, Key: key, Status: domain.StatusWorked, HTTPStatus: 200}, nil
}

type slowProber struct {
	delay time.Duration
}

func (p *slowProber) Probe(ctx context.Context, key string, ep catalog.Endpoint) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}
	time.Sleep(p.delay)
	return domain.Outcome{EndpointID: ep.ID, Key: key, Status: domain.StatusWorked}, nil
}

func eps(ids ...int) []catalog.Endpoint {
	out := make([]catalog.Endpoint, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalog.Endpoint{ID: id, Name: "EP", Method: "GET", URL: "http://x/?key={key}"})
	}
	return out
}

// --- tests ---

func TestRun_FullMatrixInCatalogOrder(t *testing.T) {
	p := &instantProber{}
	r := New(p, nil, 4)

	sel := Selection{Keys: []string{"k1", "k2"}, Endpoints: eps(1, 2, 3)}
	m, err := r.Run(context.Background(), sel)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if m.Size() != 6 {
		t.Fatalf("want 6 outcomes, got %d", m.Size())
	}
	if m.Incomplete {
		t.Fatal("run should be complete")
	}
	if p.calls.Load() != 6 {
		t.Fatalf("want 6 probe calls, got %d", p.calls.Load())
	}

	for _, key := range m.Keys() {
		outs := m.Outcomes(key)
		if len(outs) != 3 {
			t.Fatalf("key %s: want 3 outcomes, got %d", key, len(outs))
		}
		for i, o := range outs {
			if o.EndpointID != i+1 {
				t.Fatalf("key %s: outcome %d has endpoint %d, want %d", key, i, o.EndpointID, i+1)
			}
		}
	}
}

func TestRun_EmptySelectionFailsBeforeDispatch(t *testing.T) {
	p := &instantProber{}
	r := New(p, nil, 2)

	var ce *ConfigError

	_, err := r.Run(context.Background(), Selection{Keys: nil, Endpoints: eps(1)})
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError for empty keys, got %v", err)
	}

	_, err = r.Run(context.Background(), Selection{Keys: []string{"k"}, Endpoints: nil})
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError for empty endpoints, got %v", err)
	}

	_, err = r.Run(context.Background(), Selection{Keys: []string{"k", "  "}, Endpoints: eps(1)})
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError for blank key, got %v", err)
	}

	if p.calls.Load() != 0 {
		t.Fatalf("nothing may be dispatched on config errors, got %d calls", p.calls.Load())
	}
}

func TestRun_CancelledReturnsPartialMatrix(t *testing.T) {
	r := New(&slowProber{delay: 30 * time.Millisecond}, nil, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	sel := Selection{Keys: []string{"k1", "k2", "k3"}, Endpoints: eps(1, 2, 3, 4)}
	m, err := r.Run(ctx, sel)
	if err != nil {
		t.Fatalf("cancelled run must still return the partial matrix: %v", err)
	}
	if !m.Incomplete {
		t.Fatal("want incomplete marker on cancelled run")
	}
	if m.Size() >= 12 {
		t.Fatalf("want fewer than all 12 outcomes, got %d", m.Size())
	}
}

func TestRun_PairFailureDoesNotAbort(t *testing.T) {
	// A prober that reports NETWORK_ERROR for one endpoint must not stop
	// the remaining pairs from running.
	p := proberFunc(func(ctx context.Context, key string, ep catalog.Endpoint) (domain.Outcome, error) {
		st := domain.StatusWorked
		if ep.ID == 2 {
			st = domain.StatusNetworkError
		}
		return domain.Outcome{EndpointID: ep.ID, Key: key, Status: st}, nil
	})
	r := New(p, nil, 3)

	m, err := r.Run(context.Background(), Selection{Keys: []string{"k"}, Endpoints: eps(1, 2, 3)})
	if err != nil {
		t.Fatal(err)
	}
	if m.Size() != 3 {
		t.Fatalf("want all 3 outcomes recorded, got %d", m.Size())
	}
	if o, _ := m.Get("k", 2); o.Status != domain.StatusNetworkError {
		t.Fatalf("want NETWORK_ERROR recorded for endpoint 2, got %+v", o)
	}
}

func TestRun_DeadlineLeavesOnlyCompletedPairs(t *testing.T) {
	// Drive a real executor against a server slower than the run deadline.
	// The aborted request must not show up as a NETWORK_ERROR cell; the
	// matrix holds completed pairs only and carries the incomplete marker.
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	ex := probe.NewExecutor(5*time.Second, governor.New(1000, 1000), nil)
	r := New(ex, nil, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sel := Selection{
		Keys:      []string{"k1"},
		Endpoints: []catalog.Endpoint{{ID: 1, Name: "EP", Method: "GET", URL: s.URL + "?key={key}"}},
	}
	m, err := r.Run(ctx, sel)
	if err != nil {
		t.Fatalf("cancelled run must still return the matrix: %v", err)
	}
	if !m.Incomplete {
		t.Fatal("want incomplete marker on deadline")
	}
	if m.Size() != 0 {
		o, _ := m.Get("k1", 1)
		t.Fatalf("aborted pair must not be recorded, got %d cells (%+v)", m.Size(), o)
	}
}

type proberFunc func(ctx context.Context, key string, ep catalog.Endpoint) (domain.Outcome, error)

func (f proberFunc) Probe(ctx context.Context, key string, ep catalog.Endpoint) (domain.Outcome, error) {
	return f(ctx, key, ep)
}
